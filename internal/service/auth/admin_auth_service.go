package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"borderland-arena/internal/domain"
	"borderland-arena/internal/service"
	"borderland-arena/pkg/errors"
	"borderland-arena/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// AdminClaims represents JWT claims for game masters
type AdminClaims struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
	GoogleID string `json:"google_id"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// GoogleConfig configures admin sign-in
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AdminEmails  []string
	Secret       string
	TokenTTL     time.Duration
}

// idTokenValidator matches idtoken.Validate
type idTokenValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// AdminAuthService implements service.AdminAuthService
type AdminAuthService struct {
	oauth       *oauth2.Config
	clientID    string
	adminEmails map[string]bool
	secret      []byte
	ttl         time.Duration
	validate    idTokenValidator
	logger      *logger.Logger
	now         func() time.Time
}

// NewAdminAuthService creates the Google sign-in service for admins
func NewAdminAuthService(cfg GoogleConfig, logger *logger.Logger) service.AdminAuthService {
	return newAdminAuthService(cfg, idtoken.Validate, logger)
}

func newAdminAuthService(cfg GoogleConfig, validate idTokenValidator, logger *logger.Logger) *AdminAuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}

	emails := make(map[string]bool, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		emails[strings.ToLower(strings.TrimSpace(e))] = true
	}

	return &AdminAuthService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		clientID:    cfg.ClientID,
		adminEmails: emails,
		secret:      []byte(cfg.Secret),
		ttl:         ttl,
		validate:    validate,
		logger:      logger,
		now:         time.Now,
	}
}

// LoginURL returns the Google consent URL
func (s *AdminAuthService) LoginURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange completes the OAuth code flow using the ID token Google returns
func (s *AdminAuthService) Exchange(ctx context.Context, code string) (*domain.AdminToken, error) {
	if code == "" {
		return nil, errors.NewValidationError("code is required", nil)
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		s.logger.WithError(err).Error("Failed to exchange Google authorization code")
		return nil, errors.NewAuthenticationError("Google sign-in failed")
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		s.logger.Error("Google token response has no id_token")
		return nil, errors.NewAuthenticationError("Google sign-in failed")
	}

	return s.SignInWithIDToken(ctx, rawIDToken)
}

// SignInWithIDToken verifies a Google ID token and issues an admin token
func (s *AdminAuthService) SignInWithIDToken(ctx context.Context, rawIDToken string) (*domain.AdminToken, error) {
	if rawIDToken == "" {
		return nil, errors.NewValidationError("id_token is required", nil)
	}
	if s.clientID == "" {
		s.logger.Error("GOOGLE_CLIENT_ID not configured")
		return nil, errors.NewAuthenticationError("Admin sign-in is not configured")
	}

	payload, err := s.validate(ctx, rawIDToken, s.clientID)
	if err != nil {
		s.logger.WithError(err).Warn("Google ID token rejected")
		return nil, errors.NewAuthenticationError("Invalid Google token")
	}

	profile := &domain.AdminProfile{
		Sub:           payload.Subject,
		Email:         strings.ToLower(getStringValue(payload.Claims, "email")),
		Name:          getStringValue(payload.Claims, "name"),
		Picture:       getStringValue(payload.Claims, "picture"),
		EmailVerified: getBoolValue(payload.Claims, "email_verified"),
	}

	if !profile.EmailVerified || !s.adminEmails[profile.Email] {
		s.logger.WithField("email", profile.Email).Warn("Admin sign-in refused")
		return nil, errors.NewAuthorizationError("This account is not a game master")
	}

	token, err := s.issue(profile)
	if err != nil {
		return nil, errors.NewInternalError("Failed to issue admin token", err)
	}

	s.logger.WithField("email", profile.Email).Info("Admin signed in")
	return token, nil
}

// ValidateToken checks an admin token and the allowlist again
func (s *AdminAuthService) ValidateToken(ctx context.Context, tokenString string) (*domain.AdminProfile, error) {
	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(audienceAdmin),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		s.logger.WithError(err).Debug("Invalid admin token")
		return nil, errors.NewAuthenticationError("Invalid or expired admin token")
	}

	if !claims.IsAdmin || !s.adminEmails[claims.Email] {
		return nil, errors.NewAuthorizationError("Insufficient privileges")
	}

	return &domain.AdminProfile{
		Sub:           claims.GoogleID,
		Email:         claims.Email,
		Name:          claims.Name,
		Picture:       claims.Picture,
		EmailVerified: true,
	}, nil
}

func (s *AdminAuthService) issue(profile *domain.AdminProfile) (*domain.AdminToken, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := AdminClaims{
		Email:    profile.Email,
		Name:     profile.Name,
		Picture:  profile.Picture,
		GoogleID: profile.Sub,
		IsAdmin:  true,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   profile.Email,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{audienceAdmin},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign admin token: %w", err)
	}

	return &domain.AdminToken{Token: signed, ExpiresAt: expiresAt.UTC(), Admin: profile}, nil
}

// Helper functions to safely extract values from token claims
func getStringValue(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}

func getBoolValue(m map[string]interface{}, key string) bool {
	switch val := m[key].(type) {
	case bool:
		return val
	case string:
		return val == "true"
	}
	return false
}
