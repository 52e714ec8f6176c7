// Package filecache specifies the file-level cache contract: the
// engine only depends on this interface, never a concrete on-disk format —
// per-file on-disk caches are an external collaborator, out of core scope.
package filecache

import "github.com/polyglotscan/engine/internal/findings"

// Cache maps a content hash to previously computed findings. Hash
// collisions are treated as cache hits.
type Cache interface {
	Get(hash string) ([]findings.Finding, bool)
	Insert(hash string, findings []findings.Finding)
}

// InMemory is a simple map-backed Cache, useful for tests and for single
// process runs that want cross-call memoization without a disk format.
type InMemory struct {
	entries map[string][]findings.Finding
}

// NewInMemory returns an empty in-memory file cache.
func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[string][]findings.Finding)}
}

func (c *InMemory) Get(hash string) ([]findings.Finding, bool) {
	v, ok := c.entries[hash]
	return v, ok
}

func (c *InMemory) Insert(hash string, f []findings.Finding) {
	c.entries[hash] = f
}
