package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/discochess/cachesim"
	"github.com/discochess/cachesim/internal/tracestore"
)

// resetFlags restores every flag variable to its default.
func resetFlags(t *testing.T) {
	t.Helper()
	verbose = false
	keyingName = "tag"
	storeName = "linked"
	formatName = "text"
	outputPath = ""
	showMetrics = false
	analyze = false
	compareFormat = "text"
	genPattern = "sequential"
	genCount = 1000
	genStride = 0
	genSeed = 1
	genSets = 16
	genLines = 1
	genLineSize = 16
	genWriteRatio = 0
	genOutput = ""
}

func writeTrace(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func run(t *testing.T, fn func(*cobra.Command, []string) error, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	err := fn(cmd, args)
	return buf.String(), err
}

const smallTrace = `sets: 4
size: 1
tag length/line size: 4
R 0x0
W 0x1f
R 0x0
`

func TestRunSimulate_Text(t *testing.T) {
	resetFlags(t)
	out, err := run(t, runSimulate, writeTrace(t, "trace.txt", smallTrace))
	if err != nil {
		t.Fatalf("runSimulate() error = %v", err)
	}
	for _, want := range []string{
		"\t\t4 1-way set associative entries\n",
		" write    0x1f       1     3      3   miss       1\n",
		"Total hits       : 1\n",
		"Miss ratio       : 0.666667\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestRunSimulate_Keying(t *testing.T) {
	trace := "sets: 4\nsize: 1\nline size: 4\nR 0x0\nR 0x10\n"
	tests := []struct {
		keying string
		store  string
		hits   string
	}{
		{"tag", "linked", "Total hits       : 0\n"},
		{"index", "linked", "Total hits       : 1\n"},
		{"tag", "golang-lru", "Total hits       : 0\n"},
		{"index", "golang-lru", "Total hits       : 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.keying+"/"+tt.store, func(t *testing.T) {
			resetFlags(t)
			keyingName = tt.keying
			storeName = tt.store
			out, err := run(t, runSimulate, writeTrace(t, "trace.txt", trace))
			if err != nil {
				t.Fatalf("runSimulate() error = %v", err)
			}
			if !strings.Contains(out, tt.hits) {
				t.Errorf("output missing %q\n%s", tt.hits, out)
			}
		})
	}
}

func TestRunSimulate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		trace   string
		wantErr error
	}{
		{"sets not power of two", "sets: 3\nsize: 1\nline: 4\nR 0x0\n", cachesim.ErrSetsNotPowerOfTwo},
		{"too many sets", "sets: 16384\nsize: 1\nline: 4\nR 0x0\n", cachesim.ErrTooManySets},
		{"line size not power of two", "sets: 4\nsize: 1\nline: 12\nR 0x0\n", cachesim.ErrLineSizeNotPowerOfTwo},
		{"line size too small", "sets: 4\nsize: 1\nline: 2\nR 0x0\n", cachesim.ErrLineSizeTooSmall},
		{"bad address", "sets: 4\nsize: 1\nline: 4\nR 0xzz\n", cachesim.ErrBadAddress},
		{"unknown operation", "sets: 4\nsize: 1\nline: 4\nX 0x0\n", cachesim.ErrUnknownOperation},
		{"truncated header", "sets: 4\n", cachesim.ErrBadHeader},
		{"empty trace", "sets: 4\nsize: 1\nline: 4\n", cachesim.ErrNoAccesses},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			_, err := run(t, runSimulate, writeTrace(t, "trace.txt", tt.trace))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("runSimulate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunSimulate_Missing(t *testing.T) {
	resetFlags(t)
	_, err := run(t, runSimulate, filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, tracestore.ErrNotFound) {
		t.Errorf("runSimulate() error = %v, want %v", err, tracestore.ErrNotFound)
	}
}

func TestRunSimulate_BadFlags(t *testing.T) {
	path := writeTrace(t, "trace.txt", smallTrace)
	for _, set := range []func(){
		func() { keyingName = "address" },
		func() { storeName = "arc" },
		func() { formatName = "yaml" },
	} {
		resetFlags(t)
		set()
		if _, err := run(t, runSimulate, path); err == nil {
			t.Error("runSimulate() error = nil, want error")
		}
	}
}

func TestRunSimulate_JSONWithAnalysis(t *testing.T) {
	resetFlags(t)
	formatName = "json"
	analyze = true
	out, err := run(t, runSimulate, writeTrace(t, "trace.txt", smallTrace))
	if err != nil {
		t.Fatalf("runSimulate() error = %v", err)
	}

	var doc struct {
		Stats struct {
			Accesses int `json:"total_accesses"`
		} `json:"stats"`
		Analysis struct {
			SetsTouched int
		} `json:"analysis"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v\n%s", err, out)
	}
	if doc.Stats.Accesses != 3 || doc.Analysis.SetsTouched != 2 {
		t.Errorf("doc = %+v", doc)
	}
}

func TestRunSimulate_MetricsToFile(t *testing.T) {
	resetFlags(t)
	showMetrics = true
	outputPath = filepath.Join(t.TempDir(), "report.txt")

	out, err := run(t, runSimulate, writeTrace(t, "trace.txt", smallTrace))
	if err != nil {
		t.Fatalf("runSimulate() error = %v", err)
	}
	if out != "" {
		t.Errorf("stdout = %q, want empty", out)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, want := range []string{
		"Total accesses   : 3\n",
		"cachesim_accesses_total 3\n",
		"cachesim_misses_total 2\n",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("report missing %q\n%s", want, data)
		}
	}
}

func TestRunSimulate_JSONMetrics(t *testing.T) {
	resetFlags(t)
	formatName = "json"
	showMetrics = true
	out, err := run(t, runSimulate, writeTrace(t, "trace.txt", smallTrace))
	if err != nil {
		t.Fatalf("runSimulate() error = %v", err)
	}

	var doc struct {
		Metrics map[string]float64 `json:"metrics"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v\n%s", err, out)
	}
	if got := doc.Metrics["cachesim_hits_total"]; got != 1 {
		t.Errorf("metrics[cachesim_hits_total] = %v, want 1", got)
	}
}

var (
	errWrite = errors.New("disk full")
	errClose = errors.New("close failed")
)

type failingOutput struct {
	bytes.Buffer
	writeErr error
	closeErr error
	closed   bool
}

func (f *failingOutput) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return f.Buffer.Write(p)
}

func (f *failingOutput) Close() error {
	f.closed = true
	return f.closeErr
}

func TestEmit_CloseErrors(t *testing.T) {
	sim, err := cachesim.New(cachesim.Geometry{Sets: 4, LinesPerSet: 1, LineSize: 4})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	res, err := sim.Run(cachesim.NewSliceSource(cachesim.Access{Op: cachesim.Read, Address: 0x0}))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	tests := []struct {
		name     string
		format   string
		writeErr error
		closeErr error
		want     []error
	}{
		{"clean", "text", nil, nil, nil},
		{"close fails", "text", nil, errClose, []error{errClose}},
		{"write and close fail", "text", errWrite, errClose, []error{errWrite, errClose}},
		{"json write and close fail", "json", errWrite, errClose, []error{errWrite, errClose}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			formatName = tt.format
			out := &failingOutput{writeErr: tt.writeErr, closeErr: tt.closeErr}

			err := emit(out, res, nil, nil)
			if !out.closed {
				t.Error("emit() did not close the output")
			}
			if len(tt.want) == 0 && err != nil {
				t.Errorf("emit() error = %v, want nil", err)
			}
			for _, want := range tt.want {
				if !errors.Is(err, want) {
					t.Errorf("emit() error = %v, want %v", err, want)
				}
			}
		})
	}
}

func TestGenerateThenSimulate(t *testing.T) {
	for _, name := range []string{"gen.txt", "gen.txt.gz", "gen.txt.zst"} {
		t.Run(name, func(t *testing.T) {
			resetFlags(t)
			genSets = 4
			genLines = 2
			genLineSize = 8
			genCount = 50
			genPattern = "loop"
			genOutput = filepath.Join(t.TempDir(), name)
			if _, err := run(t, runGenerate); err != nil {
				t.Fatalf("runGenerate() error = %v", err)
			}

			out, err := run(t, runSimulate, genOutput)
			if err != nil {
				t.Fatalf("runSimulate() error = %v", err)
			}
			if !strings.Contains(out, "\t\t4 2-way set associative entries\n") ||
				!strings.Contains(out, "Total accesses   : 50\n") {
				t.Errorf("unexpected report\n%s", out)
			}
		})
	}
}

func TestRunGenerate_Stdout(t *testing.T) {
	resetFlags(t)
	genCount = 2
	out, err := run(t, runGenerate)
	if err != nil {
		t.Fatalf("runGenerate() error = %v", err)
	}
	want := "sets: 16\nsize: 1\ntag length/line size: 16\nR 0x0\nR 0x10\n"
	if out != want {
		t.Errorf("runGenerate() = %q, want %q", out, want)
	}
}

func TestRunCompare(t *testing.T) {
	resetFlags(t)
	path := writeTrace(t, "trace.txt", "sets: 4\nsize: 1\nline: 4\nR 0x0\nR 0x10\nR 0x0\n")

	out, err := run(t, runCompare, path)
	if err != nil {
		t.Fatalf("runCompare() error = %v", err)
	}
	if !strings.Contains(out, "tag vs index:") || !strings.Contains(out, "2 accesses diverge, first at access 2") {
		t.Errorf("runCompare() =\n%s", out)
	}

	compareFormat = "markdown"
	out, err = run(t, runCompare, path)
	if err != nil {
		t.Fatalf("runCompare(markdown) error = %v", err)
	}
	if !strings.Contains(out, "## tag vs index") {
		t.Errorf("runCompare(markdown) =\n%s", out)
	}
}

func TestRootCommandArgs(t *testing.T) {
	for _, args := range [][]string{{}, {"a", "b"}} {
		if err := rootCmd.Args(rootCmd, args); err == nil {
			t.Errorf("Args(%q) error = nil, want error", args)
		}
	}
}
