package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"borderland-arena/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSubmissionGuard_Redis(t *testing.T) {
	mr, client := setupRedis(t)
	guard := NewSubmissionGuard(client, client.KeyBuilder, 10*time.Second, zap.NewNop())
	ctx := context.Background()
	key := guard.SubmitKey("team-1", 1, 0)

	release, ok := guard.Acquire(ctx, key)
	require.True(t, ok)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 10*time.Second, mr.TTL(key))

	_, ok = guard.Acquire(ctx, key)
	assert.False(t, ok, "key is held")

	release()
	assert.False(t, mr.Exists(key))

	_, ok = guard.Acquire(ctx, key)
	assert.True(t, ok)
}

func TestSubmissionGuard_RedisLockExpires(t *testing.T) {
	mr, client := setupRedis(t)
	guard := NewSubmissionGuard(client, client.KeyBuilder, 2*time.Second, zap.NewNop())
	ctx := context.Background()

	_, ok := guard.Acquire(ctx, "k")
	require.True(t, ok)
	mr.FastForward(3 * time.Second)

	_, ok = guard.Acquire(ctx, "k")
	assert.True(t, ok, "a crashed holder does not block forever")
}

func TestSubmissionGuard_FallsBackWhenRedisDown(t *testing.T) {
	mr, client := setupRedis(t)
	guard := NewSubmissionGuard(client, client.KeyBuilder, time.Second, zap.NewNop())
	mr.Close()

	release, ok := guard.Acquire(context.Background(), "k")
	require.True(t, ok)
	_, ok = guard.Acquire(context.Background(), "k")
	assert.False(t, ok)
	release()
}

func TestSubmissionGuard_Local(t *testing.T) {
	guard := NewSubmissionGuard(nil, nil, time.Second, nil)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	guard.now = func() time.Time { return now }
	ctx := context.Background()

	_, ok := guard.Acquire(ctx, "k")
	require.True(t, ok)
	_, ok = guard.Acquire(ctx, "k")
	assert.False(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = guard.Acquire(ctx, "k")
	assert.True(t, ok, "expired local key is reclaimed")
}

func TestSubmissionGuard_OneWinner(t *testing.T) {
	guard := NewSubmissionGuard(nil, nil, time.Minute, nil)
	var wins int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := guard.Acquire(context.Background(), "same"); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}

func TestSubmissionGuard_FirstWithin(t *testing.T) {
	mr, client := setupRedis(t)
	guard := NewSubmissionGuard(client, client.KeyBuilder, 0, nil)
	ctx := context.Background()
	key := guard.ViolationKey("team-1")

	assert.True(t, guard.FirstWithin(ctx, key, redis.TTLViolation))
	assert.False(t, guard.FirstWithin(ctx, key, redis.TTLViolation))

	mr.FastForward(redis.TTLViolation + time.Second)
	assert.True(t, guard.FirstWithin(ctx, key, redis.TTLViolation))
}
