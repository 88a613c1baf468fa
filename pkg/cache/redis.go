package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in Redis. Expiry is delegated to Redis TTLs.
// Transient network failures are retried with backoff.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to the Redis server at url
// (e.g. "redis://localhost:6379/0") and verifies the connection.
// Every key is stored under prefix.
func NewRedisCache(ctx context.Context, url, prefix string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	c := NewRedisCacheFromClient(redis.NewClient(opts), prefix)
	if err := RetryWithBackoff(ctx, func() error {
		return classify(c.client.Ping(ctx).Err())
	}); err != nil {
		_ = c.client.Close()
		return nil, fmt.Errorf("connect %s: %w", opts.Addr, err)
	}
	return c, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	var hit bool
	err := RetryWithBackoff(ctx, func() error {
		val, err := c.client.Get(ctx, c.prefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return classify(err)
		}
		data, hit = val, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return data, hit, nil
}

// Set stores a value in Redis with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return RetryWithBackoff(ctx, func() error {
		return classify(c.client.Set(ctx, c.prefix+key, data, ttl).Err())
	})
}

// Delete removes a value from Redis.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return RetryWithBackoff(ctx, func() error {
		return classify(c.client.Del(ctx, c.prefix+key).Err())
	})
}

// Clear deletes every key under the cache prefix and returns how many were
// removed. Keys are found with SCAN, so other tenants of the server are
// left alone.
func (c *RedisCache) Clear(ctx context.Context) (int, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 500).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, classify(err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, classify(err)
	}
	return int(n), nil
}

// Close closes the client connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// classify maps client errors onto the cache sentinels. Everything except
// a closed client is treated as a transient network failure.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.ErrClosed):
		return fmt.Errorf("%w: %v", ErrClosed, err)
	default:
		return Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
}

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)
