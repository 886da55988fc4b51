// Package memorycachesimfx provides an fx module for a trace runner backed by
// an in-memory trace store. Useful for testing.
package memorycachesimfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/cachesim"
	"github.com/discochess/cachesim/internal/stats"
	"github.com/discochess/cachesim/internal/stats/logger"
	"github.com/discochess/cachesim/internal/tracestore/memstore"
)

// Module provides an in-memory trace runner for testing.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("memorycachesim",
	fx.Provide(
		newStatsCollector,
		newMemStore,
		newRunner,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("cachesim.stats"))
}

func newMemStore() *memstore.Store {
	return memstore.New()
}

// Params holds dependencies for creating the runner.
type Params struct {
	fx.In

	Keying    cachesim.Keying `optional:"true"`
	Logger    *zap.Logger
	Collector stats.Collector
	Store     *memstore.Store
	Lifecycle fx.Lifecycle
}

// Result holds the provided runner and store.
type Result struct {
	fx.Out

	Runner *cachesim.Runner
	Store  *memstore.Store // Exposed for test setup
}

func newRunner(p Params) Result {
	runner := cachesim.NewRunner(p.Store,
		cachesim.WithKeying(p.Keying),
		cachesim.WithStats(p.Collector),
		cachesim.WithLogger(p.Logger.Named("cachesim")),
	)

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return p.Store.Close()
		},
	})

	return Result{
		Runner: runner,
		Store:  p.Store,
	}
}
