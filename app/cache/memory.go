package cache

import (
	"context"
	"sync"
)

var _ FingerprintCache = (*MemoryCache)(nil)

// MemoryCache is the default process-lifetime fingerprint cache.
type MemoryCache struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		seen: make(map[string]struct{}),
	}
}

func (c *MemoryCache) Seen(ctx context.Context, fingerprint string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.seen[fingerprint]
	return ok, nil
}

func (c *MemoryCache) Add(ctx context.Context, fingerprint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seen[fingerprint] = struct{}{}
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.seen)
}
