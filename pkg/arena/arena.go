// Package arena implements the layout manager (C8): it owns the single
// pre-allocated byte buffer backing the whole engine and carves it into
// the disjoint regions C2-C5 and the record heap need, per the index
// region sub-layout formulas.
package arena

import (
	"github.com/huynhanx03/arenakv/pkg/datastructs/bitmap"
	"github.com/huynhanx03/arenakv/pkg/datastructs/bloom"
	"github.com/huynhanx03/arenakv/pkg/datastructs/directcache"
	"github.com/huynhanx03/arenakv/pkg/datastructs/heap"
	"github.com/huynhanx03/arenakv/pkg/datastructs/index"
	"github.com/huynhanx03/arenakv/pkg/store"
)

const wordSize = 4

// Layout describes the byte offsets and lengths of every region carved out
// of the arena.
type Layout struct {
	BitmapOffset, BitmapLen int
	BloomOffset, BloomLen   int
	TableOffset, TableLen   int
	NodesOffset, NodesLen   int
	HeapOffset, HeapLen     int

	NodeSlots int // nodes_len: the slot ID space, [0, NodeSlots)
	Buckets   int // htable_len: the hash table's bucket count
}

// computeLayout derives a Layout from the configured totalMemorySize and
// indexSize.
//
// The index-region formulas mix entry counts (nodes_len, htable_len) with
// byte counts (bitmap_len, bloom_len); summing the four sub-regions'
// actual byte footprints does not land exactly on the nominal indexSize.
// Rather than trust indexSize as a hard boundary the heap must start at,
// this computes each region's real byte size and starts the heap
// immediately after whatever the index region actually occupies — the
// arena then never overlaps or wastes space, and totalMemorySize remains
// the only hard external bound.
func computeLayout(totalMemorySize, indexSize int) Layout {
	l := indexSize >> 3
	nodesLen := (l >> 1) + (l >> 2)
	bitmapLen := nodesLen >> 5
	bloomLen := l >> 5
	htableLen := l - nodesLen - bitmapLen - bloomLen
	if htableLen < 1 {
		htableLen = 1
	}
	if bitmapLen < 1 {
		bitmapLen = 1
	}
	if bloomLen < 1 {
		bloomLen = 1
	}

	bitmapOff := 0
	bloomOff := bitmapOff + bitmapLen
	tableOff := bloomOff + bloomLen
	tableLen := htableLen * wordSize
	nodesOff := tableOff + tableLen
	nodesBytes := nodesLen * 3 * wordSize

	heapOff := nodesOff + nodesBytes
	heapLen := totalMemorySize - heapOff

	return Layout{
		BitmapOffset: bitmapOff, BitmapLen: bitmapLen,
		BloomOffset: bloomOff, BloomLen: bloomLen,
		TableOffset: tableOff, TableLen: tableLen,
		NodesOffset: nodesOff, NodesLen: nodesBytes,
		HeapOffset: heapOff, HeapLen: heapLen,
		NodeSlots: nodesLen,
		Buckets:   htableLen,
	}
}

// Arena owns the engine's single pre-allocated byte buffer and the façade
// built over it.
type Arena struct {
	bytes  []byte
	layout Layout
	store  *store.Store
}

// New allocates an arena of totalMemorySize bytes, partitioned per
// indexSize, and builds a façade over it with a cache of cacheSize slots.
func New(totalMemorySize, indexSize, cacheSize int) *Arena {
	layout := computeLayout(totalMemorySize, indexSize)
	a := &Arena{bytes: make([]byte, totalMemorySize), layout: layout}
	a.store = a.build(cacheSize)
	return a
}

func (a *Arena) build(cacheSize int) *store.Store {
	l := a.layout
	bm := bitmap.New(a.bytes[l.BitmapOffset : l.BitmapOffset+l.BitmapLen])
	bl := bloom.New(a.bytes[l.BloomOffset : l.BloomOffset+l.BloomLen])
	idx := index.New(
		a.bytes[l.TableOffset:l.TableOffset+l.TableLen],
		a.bytes[l.NodesOffset:l.NodesOffset+l.NodesLen],
		bm, bl,
	)
	h := heap.New(a.bytes[l.HeapOffset : l.HeapOffset+l.HeapLen])
	c := directcache.New(cacheSize)
	return store.New(c, h, idx)
}

// Store returns the façade built over this arena.
func (a *Arena) Store() *store.Store { return a.store }

// Layout returns the computed region layout.
func (a *Arena) Layout() Layout { return a.layout }

// Size returns the total arena size in bytes.
func (a *Arena) Size() int { return len(a.bytes) }

// Bytes returns the arena's backing buffer, for the admin surface's
// content fingerprint (SPEC_FULL.md §4.13). Callers must not mutate it.
func (a *Arena) Bytes() []byte { return a.bytes }
