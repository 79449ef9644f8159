package render

import "sync"

// Cache is a lazily populated, concurrency-safe map of built assets.
// Entries are built on first use and kept for the life of the process.
type Cache[K comparable, V any] struct {
	mu     sync.RWMutex
	items  map[K]V
	build  func(K) V
	builds int
}

// NewCache returns an empty cache that uses build for misses.
func NewCache[K comparable, V any](build func(K) V) *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
		build: build,
	}
}

// Get returns the asset for key, building it on the first request.
func (c *Cache[K, V]) Get(key K) V {
	c.mu.RLock()
	v, ok := c.items[key]
	c.mu.RUnlock()
	if ok {
		return v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.items[key]; ok {
		return v
	}
	v = c.build(key)
	c.items[key] = v
	c.builds++
	return v
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Builds returns how many times the build function ran.
func (c *Cache[K, V]) Builds() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.builds
}
