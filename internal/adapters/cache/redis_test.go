package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athebyme/gomarket-storefront/pkg/errors"
)

// Тест требует живой Redis: REDIS_TEST_ADDR=localhost:6379
func newTestRedis(t *testing.T) *RedisCache {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR не задан")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx).Err())

	c := NewRedisCacheFromClient(client)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()
	prefix := "test:" + uuid.NewString() + ":"

	_, err := c.Get(ctx, prefix+"missing")
	assert.ErrorIs(t, err, errors.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, prefix+"a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, prefix+"b", []byte("2"), 0))

	v, err := c.Get(ctx, prefix+"a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	require.NoError(t, c.Delete(ctx, prefix+"a"))
	_, err = c.Get(ctx, prefix+"a")
	assert.ErrorIs(t, err, errors.ErrCacheMiss)

	require.NoError(t, c.DeleteByPattern(ctx, prefix+"*"))
	_, err = c.Get(ctx, prefix+"b")
	assert.ErrorIs(t, err, errors.ErrCacheMiss)
}
