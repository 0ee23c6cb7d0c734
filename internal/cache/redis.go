package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "greenhouse-cli:"

// RedisCache stores entries as JSON strings with a Redis TTL, letting several
// machines share lookups.
type RedisCache struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client, namespace string, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, namespace: namespace, ttl: ttl}
}

// OpenRedis parses a redis:// URL and returns a connected cache.
func OpenRedis(ctx context.Context, url, namespace string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisCache(client, namespace, ttl), nil
}

func (c *RedisCache) key(key string) string {
	return redisKeyPrefix + c.namespace + ":" + sanitizeKey(key)
}

// Get loads the entry for key into dst.
func (c *RedisCache) Get(ctx context.Context, key string, dst any) bool {
	if Disabled() {
		return false
	}
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

// Put stores value for key with the cache TTL.
func (c *RedisCache) Put(ctx context.Context, key string, value any) error {
	if Disabled() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	return c.client.Set(ctx, c.key(key), data, c.ttl).Err()
}

// Clear deletes every key in this cache's namespace.
func (c *RedisCache) Clear(ctx context.Context) error {
	_, err := c.deleteMatching(ctx, redisKeyPrefix+c.namespace+":*")
	return err
}

// ClearAll deletes the entries of every namespace and returns how many were
// removed. Keys without the greenhouse-cli prefix are left alone.
func (c *RedisCache) ClearAll(ctx context.Context) (int, error) {
	return c.deleteMatching(ctx, redisKeyPrefix+"*")
}

func (c *RedisCache) deleteMatching(ctx context.Context, pattern string) (int, error) {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Close releases the Redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
