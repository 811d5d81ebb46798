package directcache

import "testing"

func TestSetGet(t *testing.T) {
	c := New(16)
	c.Set("k", "v", 0)
	if got, ok := c.Get("k"); !ok || got != "v" {
		t.Errorf("Get() = %q, %v, want %q, true", got, ok, "v")
	}
}

func TestGet_EmptySlot(t *testing.T) {
	c := New(16)
	if _, ok := c.Get("missing"); ok {
		t.Error("Get() on an empty slot should return false")
	}
}

func TestSet_CollisionEvictsOlderTenant(t *testing.T) {
	c := New(1) // every key maps to slot 0
	c.Set("a", "1", 0)
	c.Set("b", "2", 0)
	if c.Has("a") {
		t.Error("Has(a) should be false after a colliding key overwrote its slot")
	}
	if got, ok := c.Get("b"); !ok || got != "2" {
		t.Errorf("Get(b) = %q, %v, want %q, true", got, ok, "2")
	}
}

func TestDelete_OnlyClearsMatchingKey(t *testing.T) {
	c := New(1)
	c.Set("a", "1", 0)
	c.Set("b", "2", 0) // evicts "a" from the shared slot
	c.Delete("a")      // slot currently holds "b", not "a"
	if got, ok := c.Get("b"); !ok || got != "2" {
		t.Error("Delete() for a key no longer occupying its slot must not clear a different tenant")
	}
}

func TestDelete_ClearsOwnSlot(t *testing.T) {
	c := New(16)
	c.Set("k", "v", 0)
	c.Delete("k")
	if c.Has("k") {
		t.Error("Has(k) should be false after Delete(k)")
	}
}

func TestClear(t *testing.T) {
	c := New(16)
	c.Set("a", "1", 0)
	c.Set("b", "2", 0)
	c.Clear()
	if c.Has("a") || c.Has("b") {
		t.Error("Has() should be false for all keys after Clear()")
	}
}
