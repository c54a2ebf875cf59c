package redis

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/config"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
)

// newTestClient connects to REDIS_TEST_ADDR (host:port) or skips
func newTestClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	host, portStr, _ := strings.Cut(addr, ":")
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	c, err := NewClient(context.Background(), config.RedisConfig{Host: host, Port: port, DB: 15})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestHistoryCache(t *testing.T) {
	cache := NewHistoryCache(newTestClient(t), time.Minute)
	ctx := context.Background()
	sid := uuid.NewString()

	_, ok, err := cache.Get(ctx, sid)
	require.NoError(t, err)
	assert.False(t, ok)

	msgs := []domain.Message{domain.NewUserMessage("hello")}
	require.NoError(t, cache.Set(ctx, sid, msgs))

	got, ok, err := cache.Get(ctx, sid)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Content)

	require.NoError(t, cache.Invalidate(ctx, sid))
	_, ok, err = cache.Get(ctx, sid)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, sid, nil))
	n, err := cache.FlushAll(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(newTestClient(t), 2, 1)
	ctx := context.Background()
	key := uuid.NewString()

	for i := 0; i < limiter.Limit(); i++ {
		allowed, _, _, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, remaining, reset, err := limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
	assert.True(t, reset.After(time.Now()))
}

func TestKeyspace(t *testing.T) {
	cache := NewHistoryCache(&Client{}, 0)
	assert.Equal(t, "tradechat:history:abc", cache.historyKey("abc"))
	assert.Equal(t, defaultHistoryTTL, cache.ttl)
}
