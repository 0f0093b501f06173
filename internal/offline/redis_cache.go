package offline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix     = "edge:cache:"
	generationsSetKey  = "edge:generations"
	scanBatchSize      = 100
)

// RedisGenerationCache persists cache generations in Redis. Entries live
// under "edge:cache:<generation>:<key>" and the set of known generations
// under "edge:generations".
type RedisGenerationCache struct {
	client *redis.Client
}

func NewRedisGenerationCache(client *redis.Client) *RedisGenerationCache {
	return &RedisGenerationCache{client: client}
}

func (c *RedisGenerationCache) Get(ctx context.Context, generation, key string) (*CachedResponse, error) {
	data, err := c.client.Get(ctx, entryKey(generation, key)).Result()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	var resp CachedResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return &resp, nil
}

func (c *RedisGenerationCache) Put(ctx context.Context, generation, key string, resp *CachedResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := c.client.Set(ctx, entryKey(generation, key), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	if err := c.client.SAdd(ctx, generationsSetKey, generation).Err(); err != nil {
		return fmt.Errorf("failed to register generation: %w", err)
	}
	return nil
}

func (c *RedisGenerationCache) Generations(ctx context.Context) ([]string, error) {
	generations, err := c.client.SMembers(ctx, generationsSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	return generations, nil
}

func (c *RedisGenerationCache) DeleteGeneration(ctx context.Context, generation string) error {
	pattern := cacheKeyPrefix + generation + ":*"
	iter := c.client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache entry: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan generation keys: %w", err)
	}

	if err := c.client.SRem(ctx, generationsSetKey, generation).Err(); err != nil {
		return fmt.Errorf("failed to unregister generation: %w", err)
	}
	return nil
}

func entryKey(generation, key string) string {
	return cacheKeyPrefix + generation + ":" + key
}
