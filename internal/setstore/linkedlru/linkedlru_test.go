package linkedlru

import (
	"errors"
	"reflect"
	"runtime"
	"testing"

	"github.com/discochess/cachesim/internal/setstore"
)

func TestNew_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		if _, err := New(capacity); !errors.Is(err, setstore.ErrInvalidCapacity) {
			t.Errorf("New(%d) error = %v, want ErrInvalidCapacity", capacity, err)
		}
	}
}

func TestNew_LargeCapacityAllocatesLazily(t *testing.T) {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	s, err := New(1 << 24)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	runtime.ReadMemStats(&after)

	if got := after.TotalAlloc - before.TotalAlloc; got > 1<<20 {
		t.Errorf("New(1<<24) allocated %d bytes, want at most 1 MiB", got)
	}
	if s.Cap() != 1<<24 || s.Len() != 0 {
		t.Errorf("Cap(), Len() = %d, %d, want %d, 0", s.Cap(), s.Len(), 1<<24)
	}

	for k := uint64(0); k < 1000; k++ {
		if s.Add(k, k) {
			t.Fatalf("Add(%d) evicted below capacity", k)
		}
	}
	if s.Len() != 1000 {
		t.Errorf("Len() = %d, want 1000", s.Len())
	}
}

func TestStore_GetMissingLeavesOrder(t *testing.T) {
	s, err := New(2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s.Add(1, 10)
	s.Add(2, 20)

	if _, ok := s.Get(3); ok {
		t.Error("Get(3) ok = true, want false")
	}
	if got, want := s.Keys(), []uint64{2, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	s, err := New(2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if s.Add(1, 10) || s.Add(2, 20) {
		t.Fatal("Add() evicted before reaching capacity")
	}

	// Touch 1 so that 2 becomes the eviction candidate.
	if v, ok := s.Get(1); !ok || v != 10 {
		t.Fatalf("Get(1) = %d, %v, want 10, true", v, ok)
	}

	if !s.Add(3, 30) {
		t.Error("Add(3) evicted = false, want true")
	}
	if _, ok := s.Get(2); ok {
		t.Error("Get(2) ok = true after eviction, want false")
	}
	if !s.Contains(1) || !s.Contains(3) {
		t.Errorf("Keys() = %v, want 1 and 3 resident", s.Keys())
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestStore_AddExistingUpdates(t *testing.T) {
	s, err := New(2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s.Add(1, 10)
	s.Add(2, 20)

	if s.Add(1, 11) {
		t.Error("Add(existing) evicted = true, want false")
	}
	if v, _ := s.Get(1); v != 11 {
		t.Errorf("Get(1) = %d, want 11", v)
	}
	if got, want := s.Keys(), []uint64{1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	s.Add(3, 30)
	if s.Contains(2) {
		t.Error("key 2 should have been evicted")
	}
}

func TestStore_CapacityOne(t *testing.T) {
	s, err := New(1)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for key := uint64(0); key < 5; key++ {
		evicted := s.Add(key, key)
		if want := key > 0; evicted != want {
			t.Errorf("Add(%d) evicted = %v, want %v", key, evicted, want)
		}
		if got := s.Keys(); len(got) != 1 || got[0] != key {
			t.Errorf("Keys() = %v, want [%d]", got, key)
		}
	}
	if s.Cap() != 1 {
		t.Errorf("Cap() = %d, want 1", s.Cap())
	}
}

func TestStore_ContainsDoesNotTouch(t *testing.T) {
	s, err := New(2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s.Add(1, 1)
	s.Add(2, 2)

	if !s.Contains(1) {
		t.Fatal("Contains(1) = false, want true")
	}
	s.Add(3, 3)
	if s.Contains(1) {
		t.Error("Contains() must not refresh recency; key 1 should be evicted")
	}
}
