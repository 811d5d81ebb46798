// Package index implements the chained hash index (C5): a fixed-size
// bucket table plus a packed-triple node array, both carved out of the
// arena's index region. Buckets chain in descending hash order so both hits
// and misses can short-circuit without walking the whole bucket.
package index

import (
	"github.com/huynhanx03/arenakv/pkg/datastructs/bitmap"
	"github.com/huynhanx03/arenakv/pkg/datastructs/bloom"
	"github.com/huynhanx03/arenakv/pkg/hashfn"
	"github.com/huynhanx03/arenakv/pkg/utils"
)

// EOC marks an empty bucket head or the end of a chain.
const EOC = 0xFFFFFFFF

const wordSize = 4

// CheckFunc confirms that the record at ref actually holds the queried key,
// decoupling the index's hash-chain logic from the heap's record encoding.
// Callers build one by closing over the heap and the query key.
type CheckFunc func(ref int) bool

// Index is the chained hash index over table[0..htableLen) bucket heads and
// nodes[0..3·nodesLen) packed (hash, record_ref, next_slot) triples. Not
// safe for concurrent use — the engine serializes all mutation through a
// single dispatcher goroutine (SPEC_FULL.md §4.12).
type Index struct {
	table     []byte
	nodes     []byte
	slots     *bitmap.Bitmap
	bloom     *bloom.Filter
	htableLen int

	// everDeleted tracks whether Delete has ever removed a key from this
	// index. bloom.Remove is lossy (SPEC_FULL.md §9 item 1): once it has
	// run even once, a bloom negative for an unrelated key can no longer
	// be trusted, since Remove may have cleared a bit a surviving key's
	// membership still depends on. Before any delete, the bloom filter
	// only ever grows via Add, so a negative is authoritative and safe to
	// use as a hard rejection.
	everDeleted bool
}

// New wraps table and nodes (byte regions sized per SPEC_FULL.md §3) as an
// Index, using slots for node allocation and bl as the membership filter.
// Neither table nor nodes is copied. The index starts cleared.
func New(table, nodes []byte, slots *bitmap.Bitmap, bl *bloom.Filter) *Index {
	ix := &Index{
		table:     table,
		nodes:     nodes,
		slots:     slots,
		bloom:     bl,
		htableLen: len(table) / wordSize,
	}
	ix.Clear()
	return ix
}

// Clear resets bucket heads to EOC and clears the slot bitmap and bloom
// filter.
func (ix *Index) Clear() {
	for b := 0; b < ix.htableLen; b++ {
		ix.setTable(b, EOC)
	}
	ix.slots.Clear()
	ix.bloom.Clear()
	ix.everDeleted = false
}

// SlotsBusy returns the number of currently allocated node slots, used by
// the admin surface's occupancy stat (SPEC_FULL.md §4.13).
func (ix *Index) SlotsBusy() int { return ix.slots.Count() }

// SlotsCapacity returns the total number of node slots the index can hand
// out.
func (ix *Index) SlotsCapacity() int { return ix.slots.Capacity() }

// BloomFillRatio returns the membership filter's current fraction of set
// bits (SPEC_FULL.md §4.13).
func (ix *Index) BloomFillRatio() float64 { return ix.bloom.FillRatio() }

// maybeHas reports whether key might be present. Before any delete this
// trusts a bloom negative outright; afterwards a negative is no longer
// reliable (see everDeleted) and the chain must always be walked.
func (ix *Index) maybeHas(key string) bool {
	return ix.everDeleted || ix.bloom.Has(key)
}

func (ix *Index) setTable(bucket int, v uint32) {
	copy(ix.table[bucket*wordSize:], utils.Uint32ToBytes(v))
}

func (ix *Index) getTable(bucket int) uint32 {
	off := bucket * wordSize
	return utils.BytesToUint32(ix.table[off : off+wordSize])
}

func (ix *Index) nodeOffset(slot int) int {
	return slot * 3 * wordSize
}

func (ix *Index) setNode(slot int, hash, ref, next uint32) {
	off := ix.nodeOffset(slot)
	copy(ix.nodes[off:], utils.Uint32ToBytes(hash))
	copy(ix.nodes[off+wordSize:], utils.Uint32ToBytes(ref))
	copy(ix.nodes[off+2*wordSize:], utils.Uint32ToBytes(next))
}

func (ix *Index) getNode(slot int) (hash, ref, next uint32) {
	off := ix.nodeOffset(slot)
	hash = utils.BytesToUint32(ix.nodes[off : off+wordSize])
	ref = utils.BytesToUint32(ix.nodes[off+wordSize : off+2*wordSize])
	next = utils.BytesToUint32(ix.nodes[off+2*wordSize : off+3*wordSize])
	return
}

func (ix *Index) setNext(slot int, next uint32) {
	off := ix.nodeOffset(slot) + 2*wordSize
	copy(ix.nodes[off:], utils.Uint32ToBytes(next))
}

func (ix *Index) bucket(h uint32) int {
	return int(h) % ix.htableLen
}

// Get returns the record reference stored under key, or -1 if absent.
func (ix *Index) Get(key string, check CheckFunc) int {
	if !ix.maybeHas(key) {
		return -1
	}
	h := hashfn.SumString(hashfn.SeedIndex, key)
	slot := ix.getTable(ix.bucket(h))
	for slot != EOC {
		ch, ref, next := ix.getNode(int(slot))
		switch {
		case ch == h && check(int(ref)):
			return int(ref)
		case h > ch:
			return -1
		default:
			slot = next
		}
	}
	return -1
}

// Has reports whether key is present.
func (ix *Index) Has(key string, check CheckFunc) bool {
	return ix.Get(key, check) != -1
}

// Set links recordRef into key's bucket chain, preserving descending-hash
// order, and returns false without mutating anything if an exact duplicate
// (same hash, check passes) already exists or the slot bitmap is
// exhausted. Overwrite policy (delete-then-set) is the caller's
// responsibility.
func (ix *Index) Set(recordRef int, key string, check CheckFunc) bool {
	h := hashfn.SumString(hashfn.SeedIndex, key)
	b := ix.bucket(h)

	prev := uint32(EOC)
	current := ix.getTable(b)
	for {
		if current == EOC {
			return ix.link(prev, b, h, uint32(recordRef), EOC, key)
		}

		ch, ref, next := ix.getNode(int(current))
		switch {
		case ch == h && check(int(ref)):
			return false
		case h > ch:
			return ix.link(prev, b, h, uint32(recordRef), current, key)
		default:
			prev, current = current, next
		}
	}
}

func (ix *Index) link(prev uint32, bucket int, hash, ref, next uint32, key string) bool {
	slot := ix.slots.Fetch()
	if slot == -1 {
		return false
	}
	ix.setNode(slot, hash, ref, next)
	if prev == EOC {
		ix.setTable(bucket, uint32(slot))
	} else {
		ix.setNext(int(prev), uint32(slot))
	}
	ix.bloom.Add(key)
	return true
}

// Delete removes key from the index, returning its record reference, or -1
// if absent.
func (ix *Index) Delete(key string, check CheckFunc) int {
	if !ix.maybeHas(key) {
		return -1
	}
	h := hashfn.SumString(hashfn.SeedIndex, key)
	b := ix.bucket(h)

	prev := uint32(EOC)
	current := ix.getTable(b)
	for current != EOC {
		ch, ref, next := ix.getNode(int(current))
		switch {
		case ch == h && check(int(ref)):
			if prev == EOC {
				ix.setTable(b, next)
			} else {
				ix.setNext(int(prev), next)
			}
			ix.slots.Free(int(current))
			ix.bloom.Remove(key)
			ix.everDeleted = true
			return int(ref)
		case h > ch:
			return -1
		default:
			prev, current = current, next
		}
	}
	return -1
}
