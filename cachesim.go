// Package cachesim replays memory-access traces against a set-associative
// cache with least-recently-used replacement and classifies every access
// as a hit or a miss.
//
// Example usage:
//
//	tr, err := cachesim.NewTraceReader(f)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sim, err := cachesim.New(tr.Geometry())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := sim.Run(tr)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("hit ratio: %f\n", res.Stats.HitRatio)
package cachesim

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"go.uber.org/zap"

	"github.com/discochess/cachesim/internal/setstore"
	"github.com/discochess/cachesim/internal/stats"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrNoAccesses indicates the trace ended before any access was seen.
	ErrNoAccesses = errors.New("cachesim: no accesses recorded")

	// ErrFinalized indicates the simulator has already produced its result.
	ErrFinalized = errors.New("cachesim: simulator finalized")
)

// Simulator models one cache. It is not safe for concurrent use.
type Simulator struct {
	geometry Geometry
	keying   Keying
	sets     []setstore.Store
	stats    stats.Collector
	logger   *zap.Logger

	records   []AccessRecord
	totals    Stats
	resident  int64
	finalized bool
}

// New validates g and allocates one line table per set.
func New(g Geometry, opts ...Option) (*Simulator, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}

	s := &Simulator{
		geometry: g,
		keying:   cfg.keying,
		sets:     make([]setstore.Store, g.Sets),
		stats:    cfg.stats,
		logger:   cfg.logger,
	}

	for i := range s.sets {
		st, err := cfg.newStore(int(g.LinesPerSet))
		if err != nil {
			return nil, fmt.Errorf("creating set %d: %w", i, err)
		}
		s.sets[i] = st
	}

	s.logger.Debug("simulator initialized",
		zap.Uint32("sets", g.Sets),
		zap.Uint32("linesPerSet", g.LinesPerSet),
		zap.Uint32("lineSize", g.LineSize),
		zap.Uint("indexBits", g.IndexBits()),
		zap.Uint("offsetBits", g.OffsetBits()),
		zap.Stringer("keying", s.keying),
	)

	return s, nil
}

// Geometry returns the simulated cache geometry.
func (s *Simulator) Geometry() Geometry {
	return s.geometry
}

// Keying returns how lines are identified within a set.
func (s *Simulator) Keying() Keying {
	return s.keying
}

// Records returns a copy of the accesses classified so far, in trace order.
func (s *Simulator) Records() []AccessRecord {
	return slices.Clone(s.records)
}

// Access classifies a single access and updates the set it maps to.
func (s *Simulator) Access(op Operation, addr uint64) (AccessRecord, error) {
	if s.finalized {
		return AccessRecord{}, ErrFinalized
	}

	f := s.geometry.Decompose(addr)
	set := s.sets[f.Index]
	key := s.keying.key(f)

	rec := AccessRecord{
		Op:      op,
		Address: addr,
		Tag:     f.Tag,
		Index:   f.Index,
		Offset:  f.Offset,
	}

	if _, ok := set.Get(key); ok {
		rec.Status = Hit
	} else {
		rec.Status = Miss
		rec.MemoryRefs = 1
	}

	before := set.Len()
	rec.Evicted = set.Add(key, key)
	s.resident += int64(set.Len() - before)

	s.records = append(s.records, rec)
	s.count(rec)

	return rec, nil
}

func (s *Simulator) count(rec AccessRecord) {
	s.totals.Accesses++
	s.stats.IncCounter(stats.MetricAccesses, 1)

	if rec.Status == Hit {
		s.totals.Hits++
		s.stats.IncCounter(stats.MetricHits, 1)
	} else {
		s.totals.Misses++
		s.stats.IncCounter(stats.MetricMisses, 1)
		s.stats.SetGauge(stats.MetricResidentLines, s.resident)
	}

	if rec.Evicted {
		s.totals.Evictions++
		s.stats.IncCounter(stats.MetricEvictions, 1)
		s.logger.Debug("line evicted",
			zap.Uint64("index", rec.Index),
			zap.Uint64("tag", rec.Tag),
		)
	}
}

// Run feeds every access from src through the simulator and finalizes it.
// A source error other than io.EOF aborts the run.
func (s *Simulator) Run(src Source) (*Result, error) {
	for {
		a, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading access %d: %w", s.totals.Accesses+1, err)
		}
		if _, err := s.Access(a.Op, a.Address); err != nil {
			return nil, err
		}
	}
	return s.Finalize()
}

// Finalize computes the summary ratios. The simulator accepts no further
// accesses afterwards.
func (s *Simulator) Finalize() (*Result, error) {
	if s.finalized {
		return nil, ErrFinalized
	}
	s.finalized = true

	if s.totals.Accesses == 0 {
		return nil, ErrNoAccesses
	}

	st := s.totals
	st.HitRatio = float64(st.Hits) / float64(st.Accesses)
	st.MissRatio = float64(st.Misses) / float64(st.Accesses)

	s.stats.ObserveHistogram(stats.MetricHitRatio, st.HitRatio)
	s.logger.Debug("simulation finished",
		zap.Uint64("accesses", st.Accesses),
		zap.Uint64("hits", st.Hits),
		zap.Uint64("misses", st.Misses),
		zap.Uint64("evictions", st.Evictions),
	)

	return &Result{
		Geometry: s.geometry,
		Keying:   s.keying,
		Records:  slices.Clone(s.records),
		Stats:    st,
	}, nil
}
