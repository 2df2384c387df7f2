package insightcache

import (
	"context"
	"sync"

	"github.com/prolexis/analytics/internal/domain/insight"
)

// MemoryCache keeps raw model responses in process memory. Entries are never
// evicted, matching the cache contract of one entry per prompt for the
// process lifetime.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryCache constructs a cache backed by process memory.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

// Get implements insight.ResponseCache.
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, nil
	}
	c.mu.RLock()
	value, ok := c.entries[key]
	c.mu.RUnlock()
	return value, ok, nil
}

// Put implements insight.ResponseCache.
func (c *MemoryCache) Put(_ context.Context, key, response string) error {
	if key == "" {
		return nil
	}
	c.mu.Lock()
	c.entries[key] = response
	c.mu.Unlock()
	return nil
}

var _ insight.ResponseCache = (*MemoryCache)(nil)
