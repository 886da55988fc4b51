// Package memstore provides an in-memory trace store for tests and for
// traces generated in-process.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/discochess/cachesim/internal/tracestore"
)

// Compile-time check that Store implements tracestore.Store.
var _ tracestore.Store = (*Store)(nil)

// Store is an in-memory trace store.
type Store struct {
	mu     sync.RWMutex
	traces map[string][]byte
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		traces: make(map[string][]byte),
	}
}

// SetTrace stores a copy of data under name.
func (s *Store) SetTrace(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traces[name] = append([]byte(nil), data...)
}

// ReadTrace returns the stored trace.
func (s *Store) ReadTrace(ctx context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.traces[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, tracestore.ErrNotFound)
	}
	return data, nil
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}
