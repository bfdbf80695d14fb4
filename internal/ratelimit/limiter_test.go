package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWindowKey(t *testing.T) {
	now := time.Unix(120, 0)
	assert.Equal(t, "ratelimit:profile_update:u1:2", getWindowKey("profile_update:u1", time.Minute, now))
	assert.Equal(t, getWindowKey("k", time.Minute, time.Unix(120, 0)), getWindowKey("k", time.Minute, time.Unix(179, 0)))
	assert.NotEqual(t, getWindowKey("k", time.Minute, time.Unix(179, 0)), getWindowKey("k", time.Minute, time.Unix(180, 0)))
}

func TestAllow_DisabledLimiterNeverTouchesRedis(t *testing.T) {
	l := NewLimiter(nil, 0, time.Minute)
	ok, err := l.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*Limiter, *miniredis.Miniredis, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	now := time.Unix(600, 0)
	l := NewLimiter(client, limit, window)
	l.now = func() time.Time { return now }
	return l, mr, &now
}

func TestAllow_RejectsOverLimit(t *testing.T) {
	l, _, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "profile_update:u1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i+1)
	}

	ok, err := l.Allow(ctx, "profile_update:u1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Allow(ctx, "profile_update:u2")
	require.NoError(t, err)
	assert.True(t, ok, "other keys have their own counter")
}

func TestAllow_NextWindowStartsOver(t *testing.T) {
	l, _, now := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "k")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "k")
	assert.False(t, ok)

	*now = now.Add(time.Minute)
	ok, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAllow_SetsWindowTTL(t *testing.T) {
	l, mr, now := newTestLimiter(t, 5, time.Minute)

	_, err := l.Allow(context.Background(), "k")
	require.NoError(t, err)

	key := getWindowKey("k", time.Minute, *now)
	assert.Equal(t, "1", mustGet(t, mr, key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(time.Minute)
	assert.False(t, mr.Exists(key))
}

func TestAllow_RedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()
	l := NewLimiter(client, 5, time.Minute)

	_, err := l.Allow(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record request")
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}
