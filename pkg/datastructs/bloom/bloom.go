// Package bloom implements the fixed-size probabilistic membership filter
// (C3) that sits in front of the chained hash index. Unlike the teacher's
// general-purpose, independently-sized Bloom filter, this one is carved out
// of the shared arena by the layout manager (pkg/arena), uses exactly five
// hash functions with fixed seeds, and exposes Remove alongside Add — which
// makes it lossy (SPEC_FULL.md §9 item 1).
package bloom

import "github.com/huynhanx03/arenakv/pkg/hashfn"

// Filter is a fixed-size bloom filter over an externally owned byte slice.
// Not safe for concurrent use — the engine serializes all mutation through a
// single dispatcher goroutine (see SPEC_FULL.md §4.12).
type Filter struct {
	bytes []byte
	bits  uint64
}

// New wraps buf (bloom_len bytes, per SPEC_FULL.md §3) as a Filter. buf is
// not copied.
func New(buf []byte) *Filter {
	return &Filter{bytes: buf, bits: uint64(len(buf)) * 8}
}

func (f *Filter) bitIndexes(key string) [5]uint64 {
	var idx [5]uint64
	for i, seed := range hashfn.BloomSeeds {
		idx[i] = uint64(hashfn.SumString(seed, key)) % f.bits
	}
	return idx
}

func (f *Filter) setBit(i uint64)   { f.bytes[i>>3] |= 1 << (i & 7) }
func (f *Filter) clearBit(i uint64) { f.bytes[i>>3] &^= 1 << (i & 7) }
func (f *Filter) testBit(i uint64) bool {
	return f.bytes[i>>3]&(1<<(i&7)) != 0
}

// Add sets all five bits derived from key.
func (f *Filter) Add(key string) {
	for _, i := range f.bitIndexes(key) {
		f.setBit(i)
	}
}

// Remove clears all five bits derived from key.
//
// Best-effort only: another key sharing one of these bits loses it too,
// producing a false negative for that other key. A false result here is
// never treated as authoritative once a delete has happened in the
// process lifetime — only a positive result or the index itself is
// trusted (SPEC_FULL.md §9 item 1).
func (f *Filter) Remove(key string) {
	for _, i := range f.bitIndexes(key) {
		f.clearBit(i)
	}
}

// Has reports whether all five bits derived from key are set. A true
// result may be a false positive; a false result is reliable only if
// Remove has never been called on this filter.
func (f *Filter) Has(key string) bool {
	for _, i := range f.bitIndexes(key) {
		if !f.testBit(i) {
			return false
		}
	}
	return true
}

// Clear zeroes the filter.
func (f *Filter) Clear() {
	for i := range f.bytes {
		f.bytes[i] = 0
	}
}

// FillRatio reports the fraction of bits currently set, surfaced by the
// admin API's saturation stat (SPEC_FULL.md §4.13).
func (f *Filter) FillRatio() float64 {
	if f.bits == 0 {
		return 0
	}
	set := 0
	for _, b := range f.bytes {
		for b != 0 {
			set += int(b & 1)
			b >>= 1
		}
	}
	return float64(set) / float64(f.bits)
}
