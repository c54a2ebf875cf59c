package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
)

const defaultHistoryTTL = 5 * time.Minute

// HistoryCache keeps serialized session histories in Redis
type HistoryCache struct {
	client *Client
	ttl    time.Duration
}

// NewHistoryCache creates a new history cache
func NewHistoryCache(client *Client, ttl time.Duration) *HistoryCache {
	if ttl <= 0 {
		ttl = defaultHistoryTTL
	}
	return &HistoryCache{client: client, ttl: ttl}
}

func (c *HistoryCache) historyKey(sessionID string) string {
	return c.client.key("history", sessionID)
}

// Get returns the cached history. ok is false on a miss.
func (c *HistoryCache) Get(ctx context.Context, sessionID string) ([]domain.Message, bool, error) {
	data, err := c.client.rdb.Get(ctx, c.historyKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read history cache: %w", err)
	}

	msgs := []domain.Message{}
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal history: %w", err)
	}

	return msgs, true, nil
}

// Set caches the history of a session
func (c *HistoryCache) Set(ctx context.Context, sessionID string, msgs []domain.Message) error {
	if msgs == nil {
		msgs = []domain.Message{}
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	return c.client.rdb.Set(ctx, c.historyKey(sessionID), data, c.ttl).Err()
}

// Invalidate removes the cached history of a session
func (c *HistoryCache) Invalidate(ctx context.Context, sessionID string) error {
	return c.client.rdb.Del(ctx, c.historyKey(sessionID)).Err()
}

// FlushAll removes all cached histories
func (c *HistoryCache) FlushAll(ctx context.Context) (int64, error) {
	return c.client.deleteMatching(ctx, c.client.key("history", "*"))
}
