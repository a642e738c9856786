package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// New creates a new Redis client.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("platform/cache: ping: %w", err)
	}

	return client, nil
}

// Cooldown grants at most one action per key within a window.
type Cooldown struct {
	client redis.Cmdable
	prefix string
	window time.Duration
}

// NewCooldown constructs a Cooldown storing keys under prefix.
func NewCooldown(client redis.Cmdable, prefix string, window time.Duration) *Cooldown {
	return &Cooldown{client: client, prefix: prefix, window: window}
}

// Acquire reports whether the caller may act for key now. A false result
// means the key was already acquired within the window.
func (c *Cooldown) Acquire(ctx context.Context, key string) (bool, error) {
	if c == nil || c.client == nil || c.window <= 0 {
		return true, nil
	}
	ok, err := c.client.SetNX(ctx, c.prefix+key, time.Now().UTC().Format(time.RFC3339), c.window).Result()
	if err != nil {
		return false, fmt.Errorf("platform/cache: cooldown %s: %w", key, err)
	}
	return ok, nil
}
