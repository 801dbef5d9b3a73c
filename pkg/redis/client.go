package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Client struct {
	rdb        *redis.Client
	KeyBuilder *KeyBuilder
	log        *zap.Logger
}

// Nil is returned by Get on a cache miss
const Nil = redis.Nil

// Cache key constants
const (
	KeyLeaderboard    = "arena:leaderboard:%s"      // arena:leaderboard:{gameID}
	KeyQuestionSet    = "arena:questions:%d:%s"     // arena:questions:{round}:{suit}
	KeySubmitLock     = "arena:submit:%s:%d:%d"     // arena:submit:{teamID}:{round}:{index}
	KeyViolation      = "arena:violation:%s"        // arena:violation:{teamID}
	KeySessionRevoked = "arena:session:revoked:%s"  // arena:session:revoked:{tokenID}
	KeyRateLimit      = "arena:ratelimit:%s:%s"     // arena:ratelimit:{scope}:{ip}
	ChannelGameEvents = "arena:events:%s"           // arena:events:{gameID}
)

// TTL constants
const (
	TTLLeaderboard = 5 * time.Second  // Recomputed on every scoring event anyway
	TTLQuestionSet = 10 * time.Minute // Authoring writes invalidate explicitly
	TTLSubmitLock  = 10 * time.Second // Upper bound for one answer write
	TTLViolation   = 5 * time.Second  // Collapses bursts of visibility events
)

// NewClient creates a new Redis client
func NewClient(redisURL string, environment string, log *zap.Logger) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = 20
	opts.MinIdleConns = 2
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Client{rdb: rdb, KeyBuilder: NewKeyBuilder(environment), log: log}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Get retrieves a value from Redis
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()
	val, err := c.rdb.Get(ctx, key).Result()
	c.logOp("redis_get", key, time.Since(start), ignoreNil(err))
	return val, err
}

// Set stores a value in Redis with TTL
func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	start := time.Now()
	err := c.rdb.Set(ctx, key, value, ttl).Err()
	c.logOp("redis_set", key, time.Since(start), err)
	return err
}

// SetNX sets a value only if it doesn't exist (locks and dedupe keys)
func (c *Client) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	start := time.Now()
	ok, err := c.rdb.SetNX(ctx, key, value, ttl).Result()
	dur := time.Since(start)
	if err != nil {
		c.logOp("redis_setnx", key, dur, err)
	} else {
		c.log.Debug("redis_setnx",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Bool("result", ok),
			zap.Duration("duration", dur))
	}
	return ok, err
}

// Delete removes keys from Redis
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	start := time.Now()
	err := c.rdb.Del(ctx, keys...).Err()
	c.log.Debug("redis_del",
		zap.Int("keys", len(keys)),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err))
	return err
}

// Exists checks if a key exists
func (c *Client) Exists(ctx context.Context, keys ...string) (int64, error) {
	start := time.Now()
	n, err := c.rdb.Exists(ctx, keys...).Result()
	c.log.Debug("redis_exists",
		zap.Int64("result", n),
		zap.Int("keys", len(keys)),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err))
	return n, err
}

// IncrWindow increments a counter and starts its TTL on first use (fixed window)
func (c *Client) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	start := time.Now()
	n, err := c.rdb.Incr(ctx, key).Result()
	if err == nil && n == 1 {
		err = c.rdb.Expire(ctx, key, window).Err()
	}
	c.logOp("redis_incr_window", key, time.Since(start), err)
	return n, err
}

// Publish sends a message on a pub/sub channel
func (c *Client) Publish(ctx context.Context, channel string, message interface{}) error {
	start := time.Now()
	err := c.rdb.Publish(ctx, channel, message).Err()
	c.logOp("redis_publish", channel, time.Since(start), err)
	return err
}

// PSubscribe subscribes to channels matching the patterns; the caller closes the PubSub
func (c *Client) PSubscribe(ctx context.Context, patterns ...string) *redis.PubSub {
	c.log.Debug("redis_psubscribe", zap.Strings("patterns", patterns))
	return c.rdb.PSubscribe(ctx, patterns...)
}

// Health checks the Redis connection
func (c *Client) Health(ctx context.Context) error {
	start := time.Now()
	err := c.rdb.Ping(ctx).Err()
	if err != nil {
		c.log.Info("redis_ping", zap.Duration("duration", time.Since(start)), zap.Error(err))
	} else {
		c.log.Debug("redis_ping", zap.Duration("duration", time.Since(start)))
	}
	return err
}

// Pipeline creates a new pipeline for batch operations
func (c *Client) Pipeline() redis.Pipeliner {
	return c.rdb.Pipeline()
}

func (c *Client) logOp(op, key string, dur time.Duration, err error) {
	if err != nil {
		c.log.Info(op,
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
		return
	}
	c.log.Debug(op,
		zap.String("key_prefix", prefixForLog(key)),
		zap.Duration("duration", dur))
}

func ignoreNil(err error) error {
	if err == redis.Nil {
		return nil
	}
	return err
}

// prefixForLog returns a short prefix of a key so ids stay out of logs
func prefixForLog(key string) string {
	if len(key) <= 24 {
		return key
	}
	return key[:24] + "…"
}
