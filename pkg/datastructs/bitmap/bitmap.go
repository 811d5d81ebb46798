// Package bitmap implements the slot allocator bitmap (C2): a byte-backed
// bit array handing out small integer slot IDs with deterministic,
// ascending first-fit allocation.
//
// Unlike the teacher's generic in-process data structures, a Bitmap does
// not own its storage — it is constructed over a sub-slice of the shared
// arena (pkg/arena) so slot state lives in the same byte buffer as every
// other region.
package bitmap

import "math/bits"

// Bitmap is a first-fit slot allocator over an externally owned byte slice.
// Not safe for concurrent use; the engine serializes all mutation through a
// single dispatcher goroutine (see SPEC_FULL.md §4.12).
type Bitmap struct {
	bytes []byte
}

// New wraps buf as a Bitmap. buf is not copied: mutations are visible to
// whoever else holds the arena.
func New(buf []byte) *Bitmap {
	return &Bitmap{bytes: buf}
}

// Capacity returns the number of slot IDs this bitmap can hand out.
func (b *Bitmap) Capacity() int {
	return len(b.bytes) * 8
}

// Clear zeroes every bit, freeing all slots.
func (b *Bitmap) Clear() {
	for i := range b.bytes {
		b.bytes[i] = 0
	}
}

// Fetch returns the lowest-numbered free slot, marks it busy, and returns
// its ID. Returns -1 if the bitmap is full.
//
// Scan order is deterministic and ascending so slot reuse is predictable —
// callers (and tests) rely on the lowest-first property, so skipping fully-set
// (0xFF) bytes is used only to skip work, never to reorder the scan.
func (b *Bitmap) Fetch() int {
	for base, byt := range b.bytes {
		if byt == 0xFF {
			continue // fully occupied byte — skip without touching individual bits
		}
		// Find the lowest cleared bit within this byte.
		inverted := ^byt
		offset := bits.TrailingZeros8(inverted)
		b.bytes[base] |= 1 << uint(offset)
		return (base << 3) | offset
	}
	return -1
}

// Free clears the bit for slot, making it available for reuse.
func (b *Bitmap) Free(slot int) {
	if slot < 0 || slot >= b.Capacity() {
		panic("bitmap: slot out of range")
	}
	base, offset := slot>>3, uint(slot&7)
	b.bytes[base] &^= 1 << offset
}

// IsBusy reports whether slot is currently allocated.
func (b *Bitmap) IsBusy(slot int) bool {
	base, offset := slot>>3, uint(slot&7)
	return b.bytes[base]&(1<<offset) != 0
}

// Count returns the number of currently busy slots (used by the admin
// surface's occupancy stat, SPEC_FULL.md §4.13).
func (b *Bitmap) Count() int {
	n := 0
	for _, byt := range b.bytes {
		n += bits.OnesCount8(byt)
	}
	return n
}
