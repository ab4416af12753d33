package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value []byte
	timer *time.Timer
}

// MemoryCache keeps entries in process and drops them when their TTL fires.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]*memoryEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]*memoryEntry)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := &memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.timer = time.AfterFunc(ttl, func() {
			c.evict(key, entry)
		})
	}

	c.mu.Lock()
	old := c.data[key]
	c.data[key] = entry
	c.mu.Unlock()

	if old != nil && old.timer != nil {
		old.timer.Stop()
	}
	return nil
}

// evict removes key only if it still maps to entry; a later Set wins.
func (c *MemoryCache) evict(key string, entry *memoryEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data[key] == entry {
		delete(c.data, key)
	}
}

func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.data {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(c.data, key)
	}
	return nil
}
