// Package canonpath provides the process-wide canonical-path cache used to
// build finding identifiers and keep the WASM/rule caches keyed
// consistently. It is a module-owned singleton with an explicit Reset, per
// the "no hidden mutable global state" rule — never a hidden mutable global
// read directly by domain logic.
package canonpath

import (
	"path/filepath"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache canonicalizes file paths with an LRU memo and hit/miss counters.
type Cache struct {
	mu     sync.Mutex
	lru    *lru.Cache[string, string]
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a canonical-path cache with the given capacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1024
	}
	l, _ := lru.New[string, string](capacity)
	return &Cache{lru: l}
}

// Canonicalize returns the absolute, cleaned form of path, caching the
// result. Readers share the cache; writers (misses) serialize under mu.
func (c *Cache) Canonicalize(path string) (string, error) {
	if v, ok := c.lru.Get(path); ok {
		c.hits.Add(1)
		return v, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-check under the lock: another writer may have just inserted it.
	if v, ok := c.lru.Get(path); ok {
		c.hits.Add(1)
		return v, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	canonical := filepath.Clean(abs)
	c.misses.Add(1)
	c.lru.Add(path, canonical)
	return canonical, nil
}

// HitMiss returns the cumulative hit/miss counters for metrics.
func (c *Cache) HitMiss() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Reset clears the cache and its counters, for test isolation.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.hits.Store(0)
	c.misses.Store(0)
}
