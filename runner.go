package cachesim

import (
	"bytes"
	"context"
	"fmt"
)

// TraceStore reads raw, decompressed trace files by name.
type TraceStore interface {
	ReadTrace(ctx context.Context, name string) ([]byte, error)
}

// Runner replays named traces from a store. Each Run builds a fresh
// Simulator from the trace header, so one Runner can serve many traces.
type Runner struct {
	store TraceStore
	opts  []Option
}

// NewRunner returns a Runner that applies opts to every simulator it builds.
func NewRunner(store TraceStore, opts ...Option) *Runner {
	return &Runner{store: store, opts: opts}
}

// Run reads the named trace and simulates it to completion. Extra options
// are applied after the Runner's own.
func (r *Runner) Run(ctx context.Context, name string, opts ...Option) (*Result, error) {
	data, err := r.store.ReadTrace(ctx, name)
	if err != nil {
		return nil, err
	}

	tr, err := NewTraceReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", name, err)
	}

	all := make([]Option, 0, len(r.opts)+len(opts))
	all = append(all, r.opts...)
	all = append(all, opts...)
	sim, err := New(tr.Geometry(), all...)
	if err != nil {
		return nil, fmt.Errorf("configuring %s: %w", name, err)
	}

	res, err := sim.Run(tr)
	if err != nil {
		return nil, fmt.Errorf("simulating %s: %w", name, err)
	}
	return res, nil
}
