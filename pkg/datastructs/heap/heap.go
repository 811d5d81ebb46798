// Package heap implements the variable-width record heap (C4): a
// contiguous sequence of 5-byte-headered blocks carved out of the arena's
// record region. Records hold `key || 0x00 || value`; free space is
// recovered only by exact-or-larger-sized reuse, never by coalescing
// neighbors on delete.
package heap

import "github.com/huynhanx03/arenakv/pkg/utils"

const (
	flagFree = 0
	flagBusy = 1

	// headerSize is the 1-byte flag plus the 4-byte big-endian length.
	headerSize = 5
)

// Heap is a free-list-structured record allocator over an externally owned
// byte slice. Not safe for concurrent use — the engine serializes all
// mutation through a single dispatcher goroutine (SPEC_FULL.md §4.12).
type Heap struct {
	bytes  []byte
	cursor int // offset remembered from the previous successful save
}

// New wraps buf as a Heap and writes the initial single FREE block spanning
// the whole region. buf is not copied.
func New(buf []byte) *Heap {
	h := &Heap{bytes: buf}
	h.Clear()
	return h
}

// Clear resets the heap to one FREE block covering the entire region.
func (h *Heap) Clear() {
	h.cursor = 0
	h.writeHeader(0, flagFree, len(h.bytes)-headerSize)
}

// ResetCursor rewinds the remembered scan cursor to the start of the
// region, without touching the block headers themselves. Callers reach for
// this after the backing bytes were overwritten out from under the Heap
// (snapshot restore) so the next Save doesn't scan from a now-meaningless
// offset.
func (h *Heap) ResetCursor() {
	h.cursor = 0
}

func (h *Heap) writeHeader(offset int, flag byte, size int) {
	h.bytes[offset] = flag
	copy(h.bytes[offset+1:offset+headerSize], utils.Uint32ToBytesByBigEndian(uint32(size)))
}

func (h *Heap) readHeader(offset int) (flag byte, size int) {
	return h.bytes[offset], int(utils.BytesToUint32ByBigEndian(h.bytes[offset+1 : offset+headerSize]))
}

// Save appends key||0x00||value into the first fitting FREE block, splitting
// the residual into a new FREE block when it leaves at least one usable
// byte after a header. Returns the record's header offset, or -1 if no
// block fits anywhere in the region.
func (h *Heap) Save(key, value string) int {
	data := len(key) + 1 + len(value)

	if off, ok := h.scan(h.cursor, len(h.bytes), data); ok {
		return h.place(off, key, value, data)
	}
	if h.cursor != 0 {
		if off, ok := h.scan(0, h.cursor, data); ok {
			return h.place(off, key, value, data)
		}
	}
	return -1
}

// scan walks headers in [from, to) looking for a FREE block that fits n
// bytes of payload. Returns the block's offset on the first fit — every fit
// is used, per SPEC_FULL.md §9 item 3 (no silent fallthrough to a later,
// worse-fitting block).
func (h *Heap) scan(from, to int, n int) (int, bool) {
	offset := from
	for offset+headerSize <= to {
		flag, size := h.readHeader(offset)
		if flag == flagFree && size >= n {
			return offset, true
		}
		next := offset + size + headerSize
		if next > len(h.bytes) {
			panic("corrupted arena: heap record overruns region bound")
		}
		offset = next
	}
	return 0, false
}

func (h *Heap) place(offset int, key, value string, n int) int {
	_, oldSize := h.readHeader(offset)

	h.writeHeader(offset, flagBusy, n)
	body := h.bytes[offset+headerSize : offset+headerSize+n]
	copy(body, key)
	body[len(key)] = 0
	copy(body[len(key)+1:], value)

	if residual := oldSize - n - headerSize; residual > 0 {
		h.writeHeader(offset+headerSize+n, flagFree, residual)
	}

	h.cursor = offset
	return offset
}

// GetKey returns the key stored at offset, or ("", false) if offset
// addresses a FREE block.
func (h *Heap) GetKey(offset int) (string, bool) {
	key, _, ok := h.read(offset)
	return key, ok
}

// GetValue returns the value stored at offset, or ("", false) if offset
// addresses a FREE block.
func (h *Heap) GetValue(offset int) (string, bool) {
	_, value, ok := h.read(offset)
	return value, ok
}

func (h *Heap) read(offset int) (key, value string, ok bool) {
	flag, size := h.readHeader(offset)
	if flag == flagFree {
		return "", "", false
	}
	body := h.bytes[offset+headerSize : offset+headerSize+size]
	for i, b := range body {
		if b == 0 {
			return string(body[:i]), string(body[i+1:]), true
		}
	}
	return string(body), "", true
}

// Stats walks every block header and returns the total payload bytes
// currently held in BUSY blocks and FREE blocks respectively. Used by the
// admin surface's occupancy stat (SPEC_FULL.md §4.13).
func (h *Heap) Stats() (busyBytes, freeBytes int) {
	offset := 0
	for offset+headerSize <= len(h.bytes) {
		flag, size := h.readHeader(offset)
		if flag == flagBusy {
			busyBytes += size
		} else {
			freeBytes += size
		}
		offset += size + headerSize
	}
	return busyBytes, freeBytes
}

// Delete marks the block at offset FREE, preserving its length word. Returns
// false if the block was already FREE. Never merges with neighboring
// blocks.
func (h *Heap) Delete(offset int) bool {
	flag, _ := h.readHeader(offset)
	if flag == flagFree {
		return false
	}
	h.bytes[offset] = flagFree
	return true
}
