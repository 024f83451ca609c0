package businessflow

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rc := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: 500 * time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		t.Skipf("skipping redis test: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })
	return rc
}

func TestRedisLockReleaseKeepsForeignLock(t *testing.T) {
	rc := testRedis(t)
	ctx := context.Background()
	key := "printshop:test:lock:" + uuid.NewString()
	t.Cleanup(func() { rc.Del(ctx, key) })

	first, err := acquireRedisLock(ctx, rc, key, time.Minute)
	require.NoError(t, err)
	require.NotNil(t, first)

	busy, err := acquireRedisLock(ctx, rc, key, time.Minute)
	require.NoError(t, err)
	assert.Nil(t, busy)

	// first holder's TTL lapses and a second caller takes the key
	require.NoError(t, rc.Del(ctx, key).Err())
	second, err := acquireRedisLock(ctx, rc, key, time.Minute)
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.False(t, first.Release(ctx))
	held, err := rc.Get(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, second.token, held)

	assert.True(t, second.Release(ctx))
	assert.Equal(t, int64(0), rc.Exists(ctx, key).Val())
}
