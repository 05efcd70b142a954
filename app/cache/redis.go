package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ FingerprintCache = (*RedisCache)(nil)

// RedisCache shares the seen-fingerprint set between instances. Entries carry
// a TTL; an evicted entry only costs one extra store lookup on the next crawl.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(addr string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return &RedisCache{
		client: client,
		prefix: "dropcomb:fp:",
		ttl:    ttl,
	}, nil
}

func (c *RedisCache) Seen(ctx context.Context, fingerprint string) (bool, error) {
	count, err := c.client.Exists(ctx, c.prefix+fingerprint).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check fingerprint: %w", err)
	}
	return count > 0, nil
}

func (c *RedisCache) Add(ctx context.Context, fingerprint string) error {
	if err := c.client.Set(ctx, c.prefix+fingerprint, "1", c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to add fingerprint: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
