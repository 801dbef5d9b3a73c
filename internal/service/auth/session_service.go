package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"borderland-arena/internal/domain"
	"borderland-arena/internal/service"
	"borderland-arena/pkg/errors"
	"borderland-arena/pkg/logger"
	"borderland-arena/pkg/redis"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "borderland-arena"
	audienceTeam  = "team"
	audienceAdmin = "admin"
)

// SessionClaims represents JWT claims of a team session
type SessionClaims struct {
	GameID   string `json:"game_id"`
	TeamID   string `json:"team_id"`
	JoinCode string `json:"join_code"`
	jwt.RegisteredClaims
}

// SessionService implements service.SessionService with HS256 tokens.
// Revoked token ids are kept in Redis, or in memory when Redis is absent.
type SessionService struct {
	secret []byte
	ttl    time.Duration
	redis  *redis.Client
	logger *logger.Logger
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewSessionService creates a new session service
func NewSessionService(secret string, ttl time.Duration, redisClient *redis.Client, logger *logger.Logger) service.SessionService {
	return newSessionService(secret, ttl, redisClient, logger)
}

func newSessionService(secret string, ttl time.Duration, redisClient *redis.Client, logger *logger.Logger) *SessionService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionService{
		secret:  []byte(secret),
		ttl:     ttl,
		redis:   redisClient,
		logger:  logger,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// Issue creates a signed session for a team
func (s *SessionService) Issue(ctx context.Context, gameID, teamID, joinCode string) (*domain.Session, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	tokenID := uuid.NewString()

	claims := SessionClaims{
		GameID:   gameID,
		TeamID:   teamID,
		JoinCode: joinCode,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   teamID,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{audienceTeam},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &domain.Session{
		GameID:    gameID,
		TeamID:    teamID,
		JoinCode:  joinCode,
		TokenID:   tokenID,
		Token:     signed,
		ExpiresAt: expiresAt.UTC(),
	}, nil
}

// Parse validates a session token and checks it was not revoked
func (s *SessionService) Parse(ctx context.Context, tokenString string) (*domain.Session, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(audienceTeam),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		s.logger.WithError(err).Debug("Invalid session token")
		return nil, errors.NewAuthenticationError("Invalid or expired session")
	}
	if claims.GameID == "" || claims.TeamID == "" || claims.ID == "" {
		return nil, errors.NewAuthenticationError("Invalid session")
	}

	revoked, err := s.isRevoked(ctx, claims.ID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to check session", err)
	}
	if revoked {
		return nil, errors.NewAuthenticationError("Session has been cleared")
	}

	session := &domain.Session{
		GameID:   claims.GameID,
		TeamID:   claims.TeamID,
		JoinCode: claims.JoinCode,
		TokenID:  claims.ID,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return session, nil
}

// Revoke deny-lists the token id until the token would have expired
func (s *SessionService) Revoke(ctx context.Context, session *domain.Session) error {
	remaining := session.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return nil
	}

	if s.redis != nil {
		return s.redis.Set(ctx, s.redis.KeyBuilder.KeySessionRevoked(session.TokenID), "1", remaining)
	}

	s.mu.Lock()
	s.revoked[session.TokenID] = session.ExpiresAt
	s.mu.Unlock()
	return nil
}

func (s *SessionService) isRevoked(ctx context.Context, tokenID string) (bool, error) {
	if s.redis != nil {
		n, err := s.redis.Exists(ctx, s.redis.KeyBuilder.KeySessionRevoked(tokenID))
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[tokenID]
	if ok && s.now().After(exp) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return ok, nil
}
