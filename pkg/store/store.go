// Package store implements the KV façade (C7): the single entry point that
// composes the direct-mapped cache, the record heap, and the chained hash
// index into has/get/set/delete. Every method here assumes it is called
// from the single goroutine that owns the arena (SPEC_FULL.md §4.12) — the
// façade itself does no locking.
package store

import (
	"github.com/huynhanx03/arenakv/pkg/datastructs/directcache"
	"github.com/huynhanx03/arenakv/pkg/datastructs/heap"
	"github.com/huynhanx03/arenakv/pkg/datastructs/index"
)

// Store is the KV façade over one arena's cache, heap, and index.
type Store struct {
	cache *directcache.Cache
	heap  *heap.Heap
	index *index.Index
}

// New composes cache, h, and idx into a Store. The three must be built over
// disjoint regions of the same arena (see pkg/arena).
func New(cache *directcache.Cache, h *heap.Heap, idx *index.Index) *Store {
	return &Store{cache: cache, heap: h, index: idx}
}

func (s *Store) checker(key string) index.CheckFunc {
	return func(ref int) bool {
		k, ok := s.heap.GetKey(ref)
		return ok && k == key
	}
}

// assertNonEmptyKey enforces SPEC_FULL.md §4.7's "set/delete/get/has all
// assert non-empty keys". Nothing upstream of the façade filters this —
// the wire protocol happily parses "GET /nosql/" into an empty Param — so
// the assertion has to live here. An empty key is caller error, not a
// reachable-by-design runtime condition, so this panics per §7's "external
// assertions ... are fatal" rather than returning a sentinel value.
func assertNonEmptyKey(key string) {
	if key == "" {
		panic("store: key must be non-empty")
	}
}

// Has reports whether key is present, checking the cache before falling
// back to the index.
func (s *Store) Has(key string) bool {
	assertNonEmptyKey(key)
	if s.cache.Has(key) {
		return true
	}
	return s.index.Has(key, s.checker(key))
}

// Get returns the value stored under key, or ("", false) if absent.
func (s *Store) Get(key string) (string, bool) {
	assertNonEmptyKey(key)
	if v, ok := s.cache.Get(key); ok {
		return v, true
	}
	ref := s.index.Get(key, s.checker(key))
	if ref == -1 {
		return "", false
	}
	return s.heap.GetValue(ref)
}

// Set stores value under key, returning false if the arena has no room
// left (a full slot bitmap or a heap with no fitting free block).
//
// Any existing record for key is removed first, so Set is always an
// overwrite rather than an insert-or-reject: this makes repeated writes to
// the same key idempotent at the core level instead of leaving behind a
// duplicate-rejected, now-orphaned heap block (SPEC_FULL.md §9 item 2).
func (s *Store) Set(key, value string) bool {
	assertNonEmptyKey(key)
	if ref := s.index.Delete(key, s.checker(key)); ref != -1 {
		s.heap.Delete(ref)
	}
	s.cache.Set(key, value, 0)

	off := s.heap.Save(key, value)
	if off == -1 {
		return false
	}
	if !s.index.Set(off, key, s.checker(key)) {
		// Only the slot bitmap can still reject here, since the prior
		// record for key was just removed above. Free the block rather
		// than leak it.
		s.heap.Delete(off)
		return false
	}
	return true
}

// Delete removes key, returning true iff it was present.
func (s *Store) Delete(key string) bool {
	assertNonEmptyKey(key)
	s.cache.Delete(key)
	ref := s.index.Delete(key, s.checker(key))
	if ref == -1 {
		return false
	}
	return s.heap.Delete(ref)
}

// Clear resets the cache, heap, and index to their empty state.
func (s *Store) Clear() {
	s.cache.Clear()
	s.heap.Clear()
	s.index.Clear()
}

// BitmapStats returns the number of busy node slots — the admin surface's
// occupancy stat (SPEC_FULL.md §4.13); see BitmapCapacity for the total.
func (s *Store) BitmapStats() int { return s.index.SlotsBusy() }

// BitmapCapacity returns the index's total slot capacity.
func (s *Store) BitmapCapacity() int { return s.index.SlotsCapacity() }

// BloomFillRatio returns the index's membership filter's current fraction
// of set bits.
func (s *Store) BloomFillRatio() float64 { return s.index.BloomFillRatio() }

// HeapStats returns the record heap's current busy and free byte totals.
func (s *Store) HeapStats() (busyBytes, freeBytes int) { return s.heap.Stats() }

// ResetAfterLoad adjusts the façade's non-persisted state after the
// underlying arena bytes were overwritten wholesale by a snapshot restore.
// The cache is cleared rather than restored, matching a warm restart
// starting from an empty cache; the heap's scan cursor is rewound since it
// no longer corresponds to anything meaningful in the freshly loaded
// bytes. The index and heap block headers themselves need no action: they
// are exactly the bytes that were just loaded.
func (s *Store) ResetAfterLoad() {
	s.cache.Clear()
	s.heap.ResetCursor()
}
