package heap

import "testing"

func TestSaveGetRoundTrip(t *testing.T) {
	h := New(make([]byte, 256))
	off := h.Save("key", "value")
	if off == -1 {
		t.Fatal("Save() returned -1 on an empty heap")
	}
	if k, ok := h.GetKey(off); !ok || k != "key" {
		t.Errorf("GetKey() = %q, %v, want %q, true", k, ok, "key")
	}
	if v, ok := h.GetValue(off); !ok || v != "value" {
		t.Errorf("GetValue() = %q, %v, want %q, true", v, ok, "value")
	}
}

func TestValueContainingNulByte(t *testing.T) {
	h := New(make([]byte, 256))
	off := h.Save("k", "a\x00b\x00c")
	v, ok := h.GetValue(off)
	if !ok || v != "a\x00b\x00c" {
		t.Errorf("GetValue() = %q, %v, want %q, true", v, ok, "a\x00b\x00c")
	}
}

func TestSave_SplitsResidualIntoFreeBlock(t *testing.T) {
	h := New(make([]byte, 100)) // 95 bytes of payload capacity
	off := h.Save("k", "v")     // data = "k\x00v" = 3 bytes
	if off != 0 {
		t.Fatalf("first Save offset = %d, want 0", off)
	}
	// The residual block should start right after this record's payload.
	nextOffset := headerSize + 3
	flag, size := h.readHeader(nextOffset)
	if flag != flagFree {
		t.Fatalf("residual block at %d is not FREE", nextOffset)
	}
	wantSize := 95 - 3 - headerSize
	if size != wantSize {
		t.Errorf("residual size = %d, want %d", size, wantSize)
	}
}

func TestSave_ReusesDeletedBlock(t *testing.T) {
	h := New(make([]byte, 256))
	off1 := h.Save("a", "1")
	h.Delete(off1)
	off2 := h.Save("b", "2")
	if off2 != off1 {
		t.Errorf("Save() after Delete() offset = %d, want reuse of %d", off2, off1)
	}
}

func TestSave_NoFitReturnsMinusOne(t *testing.T) {
	h := New(make([]byte, 10)) // 5 bytes of payload capacity
	data := "this-key-is-far-too-long-to-fit"
	if off := h.Save(data, "v"); off != -1 {
		t.Errorf("Save() = %d, want -1 when no block fits", off)
	}
}

func TestSave_ExactFitLeavesNoResidual(t *testing.T) {
	h := New(make([]byte, headerSize+3)) // exactly one 3-byte payload
	off := h.Save("k", "v")
	if off != 0 {
		t.Fatalf("Save() = %d, want 0", off)
	}
	// There must be no room left for a second header; a second Save must fail.
	if off2 := h.Save("x", "y"); off2 != -1 {
		t.Errorf("second Save() = %d, want -1 (heap exactly full)", off2)
	}
}

func TestDelete_FreesBlockForReuse(t *testing.T) {
	h := New(make([]byte, 256))
	off := h.Save("key", "value")
	if !h.Delete(off) {
		t.Error("Delete() on a BUSY block should return true")
	}
	if _, ok := h.GetKey(off); ok {
		t.Error("GetKey() after Delete() should report absent")
	}
}

func TestDelete_AlreadyFreeReturnsFalse(t *testing.T) {
	h := New(make([]byte, 256))
	off := h.Save("key", "value")
	h.Delete(off)
	if h.Delete(off) {
		t.Error("second Delete() on an already-FREE block should return false")
	}
}

func TestDelete_DoesNotCoalesceNeighbors(t *testing.T) {
	h := New(make([]byte, 256))
	off1 := h.Save("a", "1")
	off2 := h.Save("bb", "22")
	h.Delete(off1)
	// A third save requiring more than off1's block alone must not find
	// space by merging with the neighbor that followed it.
	big := make([]byte, 40)
	for i := range big {
		big[i] = 'x'
	}
	off3 := h.Save(string(big), "v")
	if off3 == off1 {
		t.Error("Save() must not coalesce the freed block with its neighbor")
	}
	_ = off2
}

func TestClear_ResetsToSingleFreeBlock(t *testing.T) {
	h := New(make([]byte, 256))
	h.Save("k", "v")
	h.Clear()
	flag, size := h.readHeader(0)
	if flag != flagFree {
		t.Error("Clear() should leave a single FREE block at offset 0")
	}
	if size != 256-headerSize {
		t.Errorf("Clear() block size = %d, want %d", size, 256-headerSize)
	}
}

func TestWalkReachesExactHeapEnd(t *testing.T) {
	h := New(make([]byte, 200))
	h.Save("a", "1")
	h.Save("bb", "22")
	h.Save("ccc", "333")

	offset := 0
	for offset < len(h.bytes) {
		_, size := h.readHeader(offset)
		offset += size + headerSize
	}
	if offset != len(h.bytes) {
		t.Errorf("heap walk ended at %d, want exactly %d", offset, len(h.bytes))
	}
}

func TestStats_TracksBusyAndFreeBytes(t *testing.T) {
	h := New(make([]byte, 100)) // 95 bytes of payload capacity
	if busy, free := h.Stats(); busy != 0 || free != 95 {
		t.Errorf("Stats() on empty heap = %d, %d, want 0, 95", busy, free)
	}
	off := h.Save("k", "v") // data = "k\x00v" = 3 bytes
	busy, free := h.Stats()
	if busy != 3 {
		t.Errorf("Stats() busy = %d, want 3", busy)
	}
	if free != 95-3-headerSize {
		t.Errorf("Stats() free = %d, want %d", free, 95-3-headerSize)
	}
	h.Delete(off)
	busy, free = h.Stats()
	wantFree := 95 - headerSize // the split residual block's extra header is never reclaimed
	if busy != 0 || free != wantFree {
		t.Errorf("Stats() after Delete = %d, %d, want 0, %d (no coalescing)", busy, free, wantFree)
	}
}
