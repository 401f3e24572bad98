package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func Initialize(ctx context.Context, redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// AcquireLock stores token under key only if the key is free.
func (c *Client) AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, "lock:"+key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	return ok, nil
}

// ReleaseLock deletes key only while it still holds token.
func (c *Client) ReleaseLock(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, c.rdb, []string{"lock:" + key}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
