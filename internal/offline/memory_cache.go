package offline

import (
	"context"
	"sync"
)

// MemoryGenerationCache is the in-process GenerationCache used in tests and
// single-node development.
type MemoryGenerationCache struct {
	mu          sync.RWMutex
	generations map[string]map[string]*CachedResponse
}

func NewMemoryGenerationCache() *MemoryGenerationCache {
	return &MemoryGenerationCache{
		generations: make(map[string]map[string]*CachedResponse),
	}
}

func (c *MemoryGenerationCache) Get(ctx context.Context, generation, key string) (*CachedResponse, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries, ok := c.generations[generation]
	if !ok {
		return nil, ErrCacheMiss
	}
	resp, ok := entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	clone := *resp
	return &clone, nil
}

func (c *MemoryGenerationCache) Put(ctx context.Context, generation, key string, resp *CachedResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, ok := c.generations[generation]
	if !ok {
		entries = make(map[string]*CachedResponse)
		c.generations[generation] = entries
	}
	clone := *resp
	entries[key] = &clone
	return nil
}

func (c *MemoryGenerationCache) Generations(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	generations := make([]string, 0, len(c.generations))
	for generation := range c.generations {
		generations = append(generations, generation)
	}
	return generations, nil
}

func (c *MemoryGenerationCache) DeleteGeneration(ctx context.Context, generation string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.generations, generation)
	return nil
}
