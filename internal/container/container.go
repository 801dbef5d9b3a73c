package container

import (
	"context"
	"errors"
	"fmt"

	"borderland-arena/internal/config"
	"borderland-arena/internal/realtime"
	"borderland-arena/internal/repository"
	"borderland-arena/internal/service"
	"borderland-arena/internal/service/auth"
	"borderland-arena/pkg/database"
	"borderland-arena/pkg/logger"
	"borderland-arena/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           *database.PostgresDB
	RedisClient  *redis.Client
	Repositories *repository.Repositories
	Cache        *service.CacheService
	Hub          *realtime.Hub
	Services     *service.Services
}

// New connects to PostgreSQL and, when configured, Redis, then wires the services.
// Redis is optional: without it caches miss, locks and rate limits are per
// instance and events are not relayed.
func New(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Container, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("Database connection established")

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, logger.Logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			logger.Info("Redis client initialized successfully")
		}
	} else {
		logger.Info("Redis URL not configured, proceeding without caching")
	}

	return Build(cfg, logger, db, redisClient), nil
}

// Build wires repositories and services over already opened connections
func Build(cfg *config.Config, logger *logger.Logger, db *database.PostgresDB, redisClient *redis.Client) *Container {
	repos := &repository.Repositories{
		Games:       repository.NewGameRepository(db),
		Teams:       repository.NewTeamRepository(db),
		Questions:   repository.NewQuestionRepository(db),
		RoundScores: repository.NewRoundScoreRepository(db),
	}

	var relay *realtime.Relay
	var keys *redis.KeyBuilder
	if redisClient != nil {
		relay = realtime.NewRelay(redisClient, logger)
		keys = redisClient.KeyBuilder
	} else {
		keys = redis.NewKeyBuilder(cfg.Environment)
	}
	hub := realtime.NewHub(realtime.NewBroker(), relay, logger)

	cache := service.NewCacheService(redisClient, logger.Logger, cfg.LeaderboardCacheTTL)
	guard := service.NewSubmissionGuard(redisClient, keys, cfg.SubmissionLockTTL, logger.Logger)

	sessions := auth.NewSessionService(cfg.SessionSecret, cfg.SessionTTL, redisClient, logger)
	adminAuth := auth.NewAdminAuthService(auth.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		AdminEmails:  cfg.AdminEmails,
		Secret:       cfg.SessionSecret,
		TokenTTL:     cfg.AdminTokenTTL,
	}, logger)

	leaderboard := service.NewLeaderboardService(repos, cache, hub, logger)

	services := &service.Services{
		Sessions:    sessions,
		AdminAuth:   adminAuth,
		Teams:       service.NewTeamService(repos, sessions, leaderboard, hub, logger),
		Play:        service.NewPlayService(repos, cache, guard, leaderboard, hub, logger),
		Admin:       service.NewAdminService(repos, cache, leaderboard, hub, logger),
		Leaderboard: leaderboard,
		Sandbox:     service.NewSandboxClient(cfg.PistonURL, cfg.SandboxTimeout, logger),
	}

	return &Container{
		Config:       cfg,
		Logger:       logger,
		DB:           db,
		RedisClient:  redisClient,
		Repositories: repos,
		Cache:        cache,
		Hub:          hub,
		Services:     services,
	}
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// Health pings every backing store and reports each result by name
func (c *Container) Health(ctx context.Context) map[string]error {
	checks := map[string]error{}
	if c.DB != nil {
		checks["database"] = c.DB.Health(ctx)
	}
	if c.RedisClient != nil {
		checks["redis"] = c.Cache.HealthCheck(ctx)
	}
	return checks
}

// Close releases Redis and then the database pool
func (c *Container) Close() {
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.WithError(err).Warn("Failed to close Redis client")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
