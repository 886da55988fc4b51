package memorycachesimfx

import (
	"context"
	"testing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/discochess/cachesim"
	"github.com/discochess/cachesim/internal/stats"
	"github.com/discochess/cachesim/internal/stats/logger"
	"github.com/discochess/cachesim/internal/tracestore/memstore"
)

func TestModule(t *testing.T) {
	var (
		runner    *cachesim.Runner
		store     *memstore.Store
		collector stats.Collector
	)

	app := fxtest.New(t,
		fx.Supply(zap.NewNop()),
		fx.Supply(cachesim.KeyByIndex),
		Module,
		fx.Populate(&runner, &store, &collector),
	)
	app.RequireStart()
	defer app.RequireStop()

	store.SetTrace("t", []byte("sets: 4\nsize: 1\nline size: 4\nR 0x0\nR 0x10\n"))

	res, err := runner.Run(context.Background(), "t")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Keying != cachesim.KeyByIndex || res.Stats.Hits != 1 {
		t.Errorf("Run() keying = %v hits = %d, want index, 1", res.Keying, res.Stats.Hits)
	}

	lc, ok := collector.(*logger.Collector)
	if !ok {
		t.Fatalf("collector = %T, want *logger.Collector", collector)
	}
	if got := lc.Total(stats.MetricAccesses); got != 2 {
		t.Errorf("Total(accesses) = %d, want 2", got)
	}
}

func TestModule_DefaultKeying(t *testing.T) {
	var (
		runner *cachesim.Runner
		store  *memstore.Store
	)

	app := fxtest.New(t,
		fx.Supply(zap.NewNop()),
		Module,
		fx.Populate(&runner, &store),
	)
	app.RequireStart()
	defer app.RequireStop()

	store.SetTrace("t", []byte("sets: 4\nsize: 1\nline size: 4\nR 0x0\nR 0x10\n"))
	res, err := runner.Run(context.Background(), "t")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Keying != cachesim.KeyByTag || res.Stats.Hits != 0 {
		t.Errorf("Run() keying = %v hits = %d, want tag, 0", res.Keying, res.Stats.Hits)
	}
}
