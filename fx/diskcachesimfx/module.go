// Package diskcachesimfx provides an fx module for a trace runner reading
// traces from a local directory.
package diskcachesimfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/cachesim"
	"github.com/discochess/cachesim/internal/codec"
	"github.com/discochess/cachesim/internal/codec/noopcodec"
	"github.com/discochess/cachesim/internal/stats"
	"github.com/discochess/cachesim/internal/stats/logger"
	"github.com/discochess/cachesim/internal/tracestore/cachedstore"
	"github.com/discochess/cachesim/internal/tracestore/diskstore"
)

// Config holds configuration for the disk-backed runner.
type Config struct {
	// TraceDir is the directory containing the traces.
	TraceDir string

	// Codec decompresses the traces. Default is no compression.
	Codec codec.Codec

	// CacheSize is the number of traces to keep in memory.
	// Default is 8.
	CacheSize int

	// Keying selects how lines are keyed within a set.
	Keying cachesim.Keying
}

// Module provides a disk-backed trace runner.
// Requires a *zap.Logger and a Config to be provided.
var Module = fx.Module("diskcachesim",
	fx.Provide(
		newStatsCollector,
		newRunner,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("cachesim.stats"))
}

// Params holds dependencies for creating the runner.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided runner.
type Result struct {
	fx.Out

	Runner *cachesim.Runner
}

func newRunner(p Params) (Result, error) {
	cacheSize := p.Config.CacheSize
	if cacheSize <= 0 {
		cacheSize = 8
	}
	c := p.Config.Codec
	if c == nil {
		c = noopcodec.New()
	}

	baseStore, err := diskstore.New(p.Config.TraceDir, c)
	if err != nil {
		return Result{}, err
	}

	st, err := cachedstore.New(baseStore, cacheSize)
	if err != nil {
		return Result{}, err
	}

	runner := cachesim.NewRunner(st,
		cachesim.WithKeying(p.Config.Keying),
		cachesim.WithStats(p.Collector),
		cachesim.WithLogger(p.Logger.Named("cachesim")),
	)

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return st.Close()
		},
	})

	return Result{Runner: runner}, nil
}
