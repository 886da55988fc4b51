// Package cachedstore keeps recently read traces in memory so that
// commands replaying one trace several times fetch it once.
package cachedstore

import (
	"context"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/cachesim/internal/tracestore"
)

// Compile-time check that Store implements tracestore.Store.
var _ tracestore.Store = (*Store)(nil)

// Stats contains cache statistics.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

// HitRate returns the cache hit rate as a percentage.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Store wraps another Store with an LRU cache of trace contents.
type Store struct {
	underlying tracestore.Store
	cache      *lru.Cache[string, []byte]

	hits   atomic.Int64
	misses atomic.Int64
}

// New wraps underlying with a cache holding up to capacity traces.
func New(underlying tracestore.Store, capacity int) (*Store, error) {
	c, err := lru.New[string, []byte](capacity)
	if err != nil {
		return nil, err
	}
	return &Store{underlying: underlying, cache: c}, nil
}

// ReadTrace returns the cached trace or reads and caches it.
func (s *Store) ReadTrace(ctx context.Context, name string) ([]byte, error) {
	if data, ok := s.cache.Get(name); ok {
		s.hits.Add(1)
		return data, nil
	}
	s.misses.Add(1)

	data, err := s.underlying.ReadTrace(ctx, name)
	if err != nil {
		return nil, err
	}
	s.cache.Add(name, data)
	return data, nil
}

// Close closes the underlying store.
func (s *Store) Close() error {
	s.cache.Purge()
	return s.underlying.Close()
}

// Stats returns cache statistics.
func (s *Store) Stats() Stats {
	return Stats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
		Size:   s.cache.Len(),
	}
}
