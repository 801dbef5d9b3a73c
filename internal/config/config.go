package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	Environment    string   `env:"ENVIRONMENT" envDefault:"production"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFile        string   `env:"LOG_FILE"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:5174"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	AdminTokenTTL time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"8h"`

	GoogleClientID     string   `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string   `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string   `env:"GOOGLE_REDIRECT_URL" envDefault:"http://localhost:8080/api/admin/auth/google/callback"`
	AdminEmails        []string `env:"ADMIN_EMAILS" envSeparator:","`

	PistonURL      string        `env:"PISTON_URL" envDefault:"https://emkc.org/api/v2/piston/execute"`
	SandboxTimeout time.Duration `env:"SANDBOX_TIMEOUT" envDefault:"15s"`

	LeaderboardCacheTTL time.Duration `env:"LEADERBOARD_CACHE_TTL" envDefault:"5s"`
	SubmissionLockTTL   time.Duration `env:"SUBMISSION_LOCK_TTL" envDefault:"10s"`
}

// devSessionSecret signs tokens in local development when SESSION_SECRET is unset
const devSessionSecret = "borderland-arena-dev-secret"

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return Parse(env.Options{})
}

// Parse reads the configuration with the given options. Tests pass Environment directly.
func Parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.AllowedOrigins = normalizeList(cfg.AllowedOrigins, false)
	cfg.AdminEmails = normalizeList(cfg.AdminEmails, true)

	if cfg.SessionSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, errors.New("SESSION_SECRET is required outside development")
		}
		cfg.SessionSecret = devSessionSecret
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs locally
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsAdminEmail checks the admin allowlist. Comparison is case-insensitive.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, allowed := range c.AdminEmails {
		if allowed == email {
			return true
		}
	}
	return false
}

// normalizeList trims entries and drops blanks
func normalizeList(items []string, lower bool) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if lower {
			trimmed = strings.ToLower(trimmed)
		}
		result = append(result, trimmed)
	}
	return result
}
