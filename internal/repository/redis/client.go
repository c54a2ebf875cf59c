package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/config"
)

// keyspace prefixes every key the chat service writes
const keyspace = "tradechat"

// Client is the Redis connection shared by the history cache and the chat
// rate limiter.
type Client struct {
	rdb *redis.Client
}

// NewClient dials Redis and fails fast when the server does not answer
func NewClient(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis at %s unreachable: %w", cfg.Addr(), err)
	}

	return &Client{rdb: rdb}, nil
}

// key joins parts under the service keyspace: key("history", id) is
// "tradechat:history:<id>".
func (c *Client) key(parts ...string) string {
	return keyspace + ":" + strings.Join(parts, ":")
}

// deleteMatching removes every key matching pattern with SCAN + DEL batches
func (c *Client) deleteMatching(ctx context.Context, pattern string) (int64, error) {
	var cursor uint64
	var deleted int64

	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			n, err := c.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += n
		}
		if cursor = next; cursor == 0 {
			return deleted, nil
		}
	}
}

// Ping backs the readiness check
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
