package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL applies when a cache is created with a non-positive TTL.
const DefaultTTL = time.Hour

// Config configures a Cache.
type Config struct {
	// TTL bounds how long an entry is served. Default: DefaultTTL.
	TTL time.Duration

	// Now is the clock. Default: time.Now.
	Now func() time.Time
}

// Cache is a concurrency-safe in-memory map with per-entry expiry.
// Expired entries are removed lazily on access.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// New creates a cache, applying defaults to the config.
func New[V any](config Config) *Cache[V] {
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		ttl:     config.TTL,
		now:     config.Now,
	}
}

// Get returns the cached value for key. The zero V and false on miss or
// expiry.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the cache's TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Delete removes key. Idempotent.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len counts live entries.
func (c *Cache[V]) Len() int {
	now := c.now()
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, e := range c.entries {
		if !now.After(e.expiresAt) {
			n++
		}
	}
	return n
}

// GetOrFill returns the cached value for key, calling fill on a miss and
// storing its result. A fill error is returned without caching anything.
func (c *Cache[V]) GetOrFill(ctx context.Context, key string, fill func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := fill(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, v)
	return v, nil
}
