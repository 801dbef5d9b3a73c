package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"borderland-arena/internal/domain"
	"borderland-arena/pkg/metrics"
	"borderland-arena/pkg/redis"
	"go.uber.org/zap"
)

const (
	cacheLeaderboard = "leaderboard"
	cacheQuestions   = "questions"
)

// CacheService provides cache-aside reads over Redis. A nil Redis client
// turns every lookup into a miss.
type CacheService struct {
	redis          *redis.Client
	logger         *zap.Logger
	leaderboardTTL time.Duration
}

// NewCacheService creates a new cache service
func NewCacheService(redisClient *redis.Client, logger *zap.Logger, leaderboardTTL time.Duration) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if leaderboardTTL <= 0 {
		leaderboardTTL = redis.TTLLeaderboard
	}
	return &CacheService{
		redis:          redisClient,
		logger:         logger,
		leaderboardTTL: leaderboardTTL,
	}
}

// GetQuestionSetWithCache returns the ordered questions of a round and suit
func (c *CacheService) GetQuestionSetWithCache(ctx context.Context, round int, suit domain.Suit, dbFallback func(ctx context.Context, round int, suit domain.Suit) ([]domain.Question, error)) ([]domain.Question, error) {
	cacheKey := c.questionSetKey(round, suit)

	var questions []domain.Question
	if c.getJSON(ctx, cacheQuestions, cacheKey, &questions) {
		return questions, nil
	}

	questions, err := dbFallback(ctx, round, suit)
	if err != nil {
		return nil, fmt.Errorf("database fallback failed: %w", err)
	}

	// Incomplete sets are not cached so a question added mid-round shows up
	if len(questions) > 0 {
		go c.setJSONAsync(cacheKey, questions, redis.TTLQuestionSet)
	}
	return questions, nil
}

// InvalidateQuestionSet drops the cached questions of a round and suit
func (c *CacheService) InvalidateQuestionSet(ctx context.Context, round int, suit domain.Suit) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Delete(ctx, c.questionSetKey(round, suit)); err != nil {
		c.logger.Error("Failed to invalidate question set cache",
			zap.Int("round", round),
			zap.String("suit", string(suit)),
			zap.Error(err))
	}
}

// GetLeaderboardWithCache returns the ranked standings of a game
func (c *CacheService) GetLeaderboardWithCache(ctx context.Context, gameID string, dbFallback func(ctx context.Context, gameID string) (*domain.Leaderboard, error)) (*domain.Leaderboard, error) {
	cacheKey := c.leaderboardKey(gameID)

	var board domain.Leaderboard
	if c.getJSON(ctx, cacheLeaderboard, cacheKey, &board) {
		return &board, nil
	}

	result, err := dbFallback(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("database fallback failed: %w", err)
	}

	if result != nil {
		go c.setJSONAsync(cacheKey, result, c.leaderboardTTL)
	}
	return result, nil
}

// InvalidateLeaderboard drops the cached standings of a game
func (c *CacheService) InvalidateLeaderboard(ctx context.Context, gameID string) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Delete(ctx, c.leaderboardKey(gameID)); err != nil {
		c.logger.Error("Failed to invalidate leaderboard cache",
			zap.String("game_id", gameID),
			zap.Error(err))
	}
}

// HealthCheck performs a health check on the cache system
func (c *CacheService) HealthCheck(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}

	start := time.Now()
	err := c.redis.Health(ctx)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("Cache health check failed",
			zap.Duration("duration", duration),
			zap.Error(err))
		return err
	}

	c.logger.Debug("Cache health check passed", zap.Duration("duration", duration))
	return nil
}

// getJSON reports a hit only when the cached value decodes cleanly
func (c *CacheService) getJSON(ctx context.Context, cache, key string, dest interface{}) bool {
	if c.redis == nil {
		metrics.CacheMiss(cache)
		return false
	}

	cachedData, err := c.redis.Get(ctx, key)
	if err == nil && cachedData != "" {
		if marshalErr := json.Unmarshal([]byte(cachedData), dest); marshalErr == nil {
			metrics.CacheHit(cache)
			c.logger.Debug("Cache hit", zap.String("cache", cache))
			return true
		} else {
			c.logger.Warn("Cache corrupted, falling back to database",
				zap.String("cache", cache),
				zap.Error(marshalErr))
		}
	} else if err != nil && err != redis.Nil {
		c.logger.Warn("Cache error, falling back to database",
			zap.String("cache", cache),
			zap.Error(err))
	}

	metrics.CacheMiss(cache)
	c.logger.Debug("Cache miss", zap.String("cache", cache))
	return false
}

// setJSONAsync caches a value in the background
func (c *CacheService) setJSONAsync(key string, value interface{}, ttl time.Duration) {
	if c.redis == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Error("Failed to marshal value for caching", zap.Error(err))
		return
	}

	if err := c.redis.Set(ctx, key, string(data), ttl); err != nil {
		c.logger.Error("Failed to cache value", zap.Error(err))
	}
}

func (c *CacheService) questionSetKey(round int, suit domain.Suit) string {
	if c.redis == nil {
		return ""
	}
	return c.redis.KeyBuilder.KeyQuestionSet(round, string(suit))
}

func (c *CacheService) leaderboardKey(gameID string) string {
	if c.redis == nil {
		return ""
	}
	return c.redis.KeyBuilder.KeyLeaderboard(gameID)
}
