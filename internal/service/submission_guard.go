package service

import (
	"context"
	"sync"
	"time"

	"borderland-arena/pkg/redis"
	"go.uber.org/zap"
)

// SubmissionGuard holds short-lived exclusive keys. Redis SETNX is used when
// available so the lock spans instances; otherwise, or when Redis errors, an
// in-process set is used.
type SubmissionGuard struct {
	redis  *redis.Client
	keys   *redis.KeyBuilder
	ttl    time.Duration
	logger *zap.Logger

	mu    sync.Mutex
	local map[string]time.Time
	now   func() time.Time
}

// NewSubmissionGuard creates a guard whose keys expire after ttl
func NewSubmissionGuard(redisClient *redis.Client, keys *redis.KeyBuilder, ttl time.Duration, logger *zap.Logger) *SubmissionGuard {
	if ttl <= 0 {
		ttl = redis.TTLSubmitLock
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if keys == nil {
		keys = redis.NewKeyBuilder("")
	}
	return &SubmissionGuard{
		redis:  redisClient,
		keys:   keys,
		ttl:    ttl,
		logger: logger,
		local:  make(map[string]time.Time),
		now:    time.Now,
	}
}

// Acquire takes key for the guard's ttl. The returned release func is nil when
// the key is already held.
func (g *SubmissionGuard) Acquire(ctx context.Context, key string) (release func(), ok bool) {
	if g.redis != nil {
		acquired, err := g.redis.SetNX(ctx, key, "1", g.ttl)
		if err == nil {
			if !acquired {
				return nil, false
			}
			return func() { g.releaseRemote(key) }, true
		}
		g.logger.Warn("Submission lock unavailable, using local lock", zap.Error(err))
	}

	if !g.takeLocal(key, g.ttl) {
		return nil, false
	}
	return func() { g.releaseLocal(key) }, true
}

// FirstWithin reports whether key was not seen during the last window.
// Used to collapse bursts of identical signals.
func (g *SubmissionGuard) FirstWithin(ctx context.Context, key string, window time.Duration) bool {
	if g.redis != nil {
		first, err := g.redis.SetNX(ctx, key, "1", window)
		if err == nil {
			return first
		}
		g.logger.Warn("Dedupe key unavailable, using local set", zap.Error(err))
	}
	return g.takeLocal(key, window)
}

// SubmitKey names the in-flight lock of one question of one team
func (g *SubmissionGuard) SubmitKey(teamID string, round, index int) string {
	return g.keys.KeySubmitLock(teamID, round, index)
}

// ViolationKey names the dedupe key of a team's violation reports
func (g *SubmissionGuard) ViolationKey(teamID string) string {
	return g.keys.KeyViolation(teamID)
}

func (g *SubmissionGuard) takeLocal(key string, ttl time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for k, exp := range g.local {
		if now.After(exp) {
			delete(g.local, k)
		}
	}
	if _, held := g.local[key]; held {
		return false
	}
	g.local[key] = now.Add(ttl)
	return true
}

func (g *SubmissionGuard) releaseLocal(key string) {
	g.mu.Lock()
	delete(g.local, key)
	g.mu.Unlock()
}

// releaseRemote runs detached from the request so a cancelled request still unlocks
func (g *SubmissionGuard) releaseRemote(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := g.redis.Delete(ctx, key); err != nil {
		g.logger.Warn("Failed to release submission lock", zap.Error(err))
	}
}
