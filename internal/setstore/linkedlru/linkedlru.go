// Package linkedlru implements a set store as a doubly-linked recency list
// indexed by a key map.
package linkedlru

import (
	"github.com/discochess/cachesim/internal/setstore"
)

// Compile-time check that Store implements setstore.Store.
var _ setstore.Store = (*Store)(nil)

type node struct {
	key, value uint64
	prev, next *node
}

// Store keeps the most recently used entry at the head of the list and
// evicts from the tail.
type Store struct {
	capacity   int
	nodes      map[uint64]*node
	head, tail *node
}

// maxSizeHint bounds the map space reserved up front. Wider sets grow their
// map as lines are filled.
const maxSizeHint = 64

// New creates an empty store holding at most capacity entries.
func New(capacity int) (*Store, error) {
	if capacity < 1 {
		return nil, setstore.ErrInvalidCapacity
	}
	return &Store{
		capacity: capacity,
		nodes:    make(map[uint64]*node, min(capacity, maxSizeHint)),
	}, nil
}

// Factory adapts New to setstore.Factory.
func Factory(capacity int) (setstore.Store, error) {
	return New(capacity)
}

// Get returns the value for key and moves it to the head.
func (s *Store) Get(key uint64) (uint64, bool) {
	n, ok := s.nodes[key]
	if !ok {
		return 0, false
	}
	s.moveToFront(n)
	return n.value, true
}

// Add inserts or refreshes key at the head, evicting the tail on overflow.
func (s *Store) Add(key, value uint64) bool {
	if n, ok := s.nodes[key]; ok {
		n.value = value
		s.moveToFront(n)
		return false
	}

	n := &node{key: key, value: value}
	s.nodes[key] = n
	s.pushFront(n)

	if len(s.nodes) <= s.capacity {
		return false
	}

	victim := s.tail
	s.unlink(victim)
	delete(s.nodes, victim.key)
	return true
}

// Contains reports whether key is resident.
func (s *Store) Contains(key uint64) bool {
	_, ok := s.nodes[key]
	return ok
}

// Len returns the number of resident entries.
func (s *Store) Len() int {
	return len(s.nodes)
}

// Cap returns the capacity.
func (s *Store) Cap() int {
	return s.capacity
}

// Keys returns the resident keys from most to least recently used.
func (s *Store) Keys() []uint64 {
	keys := make([]uint64, 0, len(s.nodes))
	for n := s.head; n != nil; n = n.next {
		keys = append(keys, n.key)
	}
	return keys
}

func (s *Store) moveToFront(n *node) {
	if s.head == n {
		return
	}
	s.unlink(n)
	s.pushFront(n)
}

func (s *Store) pushFront(n *node) {
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

func (s *Store) unlink(n *node) {
	if n.prev == nil {
		s.head = n.next
	} else {
		n.prev.next = n.next
	}
	if n.next == nil {
		s.tail = n.prev
	} else {
		n.next.prev = n.prev
	}
	n.prev, n.next = nil, nil
}
