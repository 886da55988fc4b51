// Package setstore defines the line table kept for a single cache set.
package setstore

import "errors"

// ErrInvalidCapacity is returned when a store is built with room for no lines.
var ErrInvalidCapacity = errors.New("setstore: capacity must be at least one")

// Store is a fixed-capacity table of lines ordered by recency of use.
// Keys identify a line within the set; values carry whatever the caller
// wants to remember about it.
type Store interface {
	// Get returns the value stored under key and marks it most recently used.
	// A missing key leaves the store untouched.
	Get(key uint64) (uint64, bool)

	// Add stores value under key as the most recently used entry. When the
	// store overflows its capacity the least recently used entry is dropped
	// and Add reports true.
	Add(key, value uint64) (evicted bool)

	// Contains reports whether key is present without changing recency.
	Contains(key uint64) bool

	// Len returns the number of resident entries.
	Len() int

	// Cap returns the fixed capacity.
	Cap() int
}

// Factory builds an empty store with the given capacity.
type Factory func(capacity int) (Store, error)
