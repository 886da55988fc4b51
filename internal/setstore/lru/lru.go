// Package lru implements a set store on top of hashicorp's LRU cache.
package lru

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/cachesim/internal/setstore"
)

// Compile-time check that Store implements setstore.Store.
var _ setstore.Store = (*Store)(nil)

// Store wraps a golang-lru cache sized to the associativity of one set.
type Store struct {
	cache    *lru.Cache[uint64, uint64]
	capacity int
}

// New creates a new store with the given capacity.
func New(capacity int) (*Store, error) {
	if capacity < 1 {
		return nil, setstore.ErrInvalidCapacity
	}
	c, err := lru.New[uint64, uint64](capacity)
	if err != nil {
		return nil, err
	}
	return &Store{cache: c, capacity: capacity}, nil
}

// Factory adapts New to setstore.Factory.
func Factory(capacity int) (setstore.Store, error) {
	return New(capacity)
}

// Get retrieves a value by key.
func (s *Store) Get(key uint64) (uint64, bool) {
	return s.cache.Get(key)
}

// Add adds a value, reporting whether an older entry was evicted.
func (s *Store) Add(key, value uint64) bool {
	return s.cache.Add(key, value)
}

// Contains reports presence without updating recency.
func (s *Store) Contains(key uint64) bool {
	return s.cache.Contains(key)
}

// Len returns the number of items in the store.
func (s *Store) Len() int {
	return s.cache.Len()
}

// Cap returns the capacity.
func (s *Store) Cap() int {
	return s.capacity
}
