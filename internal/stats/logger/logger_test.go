package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/discochess/cachesim/internal/stats"
)

func TestCollector_LogsCounters(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := New(zap.New(core))

	c.IncCounter(stats.MetricHits, 1)
	c.IncCounter(stats.MetricHits, 2)
	c.SetGauge(stats.MetricResidentLines, 4)
	c.ObserveHistogram(stats.MetricHitRatio, 0.5)

	if got := c.Total(stats.MetricHits); got != 3 {
		t.Errorf("Total() = %d, want 3", got)
	}
	if n := logs.Len(); n != 4 {
		t.Fatalf("logged %d entries, want 4", n)
	}

	last := logs.FilterMessage("counter").All()[1]
	if total := last.ContextMap()["total"]; total != int64(3) {
		t.Errorf("total field = %v, want 3", total)
	}
}

func TestNew_NilLogger(t *testing.T) {
	c := New(nil)
	c.IncCounter("x", 1)
	if c.Total("x") != 1 {
		t.Errorf("Total() = %d, want 1", c.Total("x"))
	}
}
