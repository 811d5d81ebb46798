// Package directcache implements the direct-mapped write-through cache
// (C6): two parallel arrays of fixed length holding at most one tenant per
// hash slot, with no eviction policy beyond unconditional overwrite on
// collision.
package directcache

import (
	"github.com/huynhanx03/arenakv/pkg/common/cache"
	"github.com/huynhanx03/arenakv/pkg/hashfn"
)

// Interface compliance: Cache satisfies the engine-wide local-cache
// contract (SPEC_FULL.md §4.11) for string-keyed byte-string values.
var _ cache.LocalCache[string, string] = (*Cache)(nil)

// Cache is a direct-mapped cache over CACHE_SIZE slots, keyed by the
// dedicated cache hash family (seed 731). Not safe for concurrent use —
// the engine serializes all mutation through a single dispatcher goroutine
// (SPEC_FULL.md §4.12).
type Cache struct {
	keys   []string
	values []string
	busy   []bool
	size   int
}

// New builds a Cache with exactly size slots.
func New(size int) *Cache {
	return &Cache{
		keys:   make([]string, size),
		values: make([]string, size),
		busy:   make([]bool, size),
		size:   size,
	}
}

func (c *Cache) slot(key string) int {
	return int(hashfn.SumString(hashfn.SeedCache, key)) % c.size
}

// Has reports whether slot h(key) currently holds key.
func (c *Cache) Has(key string) bool {
	i := c.slot(key)
	return c.busy[i] && c.keys[i] == key
}

// Get implements pkg/common/cache.LocalCache. It returns the cached value
// for key, or ("", false) if the slot is empty or holds a different key.
func (c *Cache) Get(key string) (string, bool) {
	i := c.slot(key)
	if c.busy[i] && c.keys[i] == key {
		return c.values[i], true
	}
	return "", false
}

// Set implements pkg/common/cache.LocalCache. It unconditionally overwrites
// the slot for key, evicting any prior occupant regardless of collision.
// cost is accepted for interface parity and ignored — a direct-mapped
// cache has no admission policy.
func (c *Cache) Set(key, value string, cost int64) bool {
	i := c.slot(key)
	c.keys[i] = key
	c.values[i] = value
	c.busy[i] = true
	return true
}

// Delete implements pkg/common/cache.LocalCache. It clears the slot for key
// only if that slot currently holds key.
func (c *Cache) Delete(key string) {
	i := c.slot(key)
	if c.busy[i] && c.keys[i] == key {
		c.busy[i] = false
		c.keys[i] = ""
		c.values[i] = ""
	}
}

// Clear empties every slot.
func (c *Cache) Clear() {
	for i := 0; i < c.size; i++ {
		c.busy[i] = false
		c.keys[i] = ""
		c.values[i] = ""
	}
}

// Close implements pkg/common/cache.LocalCache. The cache owns no external
// resources, so Close is a no-op.
func (c *Cache) Close() {}
