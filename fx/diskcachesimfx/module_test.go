package diskcachesimfx

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/discochess/cachesim"
	"github.com/discochess/cachesim/internal/codec/gzipcodec"
	"github.com/discochess/cachesim/internal/tracestore"
)

func TestModule(t *testing.T) {
	dir := t.TempDir()
	c := gzipcodec.New()

	var buf bytes.Buffer
	w, err := c.Writer(&buf)
	if err != nil {
		t.Fatalf("Writer() error = %v", err)
	}
	w.Write([]byte("sets: 2\nsize: 2\nline size: 8\nR 0x0\nW 0x8\nR 0x0\n"))
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "trace.gz"), buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	var runner *cachesim.Runner
	app := fxtest.New(t,
		fx.Supply(zap.NewNop()),
		fx.Supply(Config{TraceDir: dir, Codec: c}),
		Module,
		fx.Populate(&runner),
	)
	app.RequireStart()
	defer app.RequireStop()

	res, err := runner.Run(context.Background(), "trace.gz")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Stats.Accesses != 3 || res.Stats.Hits != 1 {
		t.Errorf("Run() stats = %+v, want 3 accesses, 1 hit", res.Stats)
	}

	if _, err := runner.Run(context.Background(), "missing.gz"); !errors.Is(err, tracestore.ErrNotFound) {
		t.Errorf("Run(missing) error = %v, want %v", err, tracestore.ErrNotFound)
	}
}

func TestModule_MissingDir(t *testing.T) {
	var runner *cachesim.Runner
	app := fx.New(
		fx.NopLogger,
		fx.Supply(zap.NewNop()),
		fx.Supply(Config{TraceDir: filepath.Join(t.TempDir(), "absent")}),
		Module,
		fx.Populate(&runner),
	)
	if app.Err() == nil {
		t.Error("fx.New() error = nil, want error for a missing trace directory")
	}
}
