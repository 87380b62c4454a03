package debate

import (
	"testing"
	"time"
)

func TestCacheGetMiss(t *testing.T) {
	c := newSessionCache(time.Hour)
	if got := c.get(1); got != nil {
		t.Errorf("Expected nil on cache miss, got %+v", got)
	}
}

func TestCachePutAndGet(t *testing.T) {
	c := newSessionCache(time.Hour)
	state := &State{ID: 1, Problem: "problem"}
	c.put(state)

	if got := c.get(1); got != state {
		t.Errorf("Expected resident mirror, got %+v", got)
	}
	if c.len() != 1 {
		t.Errorf("Expected 1 resident mirror, got %d", c.len())
	}
}

func TestCachePutReplaces(t *testing.T) {
	c := newSessionCache(time.Hour)
	c.put(&State{ID: 1, Problem: "old"})
	c.put(&State{ID: 1, Problem: "new"})

	if got := c.get(1); got == nil || got.Problem != "new" {
		t.Errorf("Expected replacement mirror, got %+v", got)
	}
	if c.len() != 1 {
		t.Errorf("Expected 1 resident mirror, got %d", c.len())
	}
}

func TestCacheRemove(t *testing.T) {
	c := newSessionCache(time.Hour)
	c.put(&State{ID: 1})
	c.remove(1)

	if got := c.get(1); got != nil {
		t.Errorf("Expected nil after remove, got %+v", got)
	}

	// Removing a missing entry is a no-op.
	c.remove(2)
}

func TestCacheSweepEvictsIdleEntries(t *testing.T) {
	c := newSessionCache(time.Minute)
	c.put(&State{ID: 1})
	c.put(&State{ID: 2})

	if evicted := c.sweep(time.Now()); evicted != 0 {
		t.Errorf("Expected no evictions for fresh entries, got %d", evicted)
	}

	// Touch entry 2, then sweep from a point past the TTL of entry 1 only.
	// Both entries share a creation time, so keep 2 alive explicitly.
	if got := c.get(2); got == nil {
		t.Fatal("Expected entry 2 to be resident")
	}

	if evicted := c.sweep(time.Now().Add(2 * time.Minute)); evicted != 2 {
		t.Errorf("Expected both idle entries evicted, got %d", evicted)
	}
	if c.len() != 0 {
		t.Errorf("Expected empty cache after sweep, got %d entries", c.len())
	}
}

func TestCacheGetRefreshesIdleClock(t *testing.T) {
	c := newSessionCache(time.Hour)
	c.put(&State{ID: 1})

	// A recent access keeps the entry alive through a sweep that would
	// otherwise evict it relative to insertion time.
	c.get(1)
	if evicted := c.sweep(time.Now().Add(30 * time.Minute)); evicted != 0 {
		t.Errorf("Expected no eviction within TTL, got %d", evicted)
	}
	if got := c.get(1); got == nil {
		t.Error("Expected entry to survive the sweep")
	}
}
