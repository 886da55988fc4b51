package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/cachesim"
	"github.com/discochess/cachesim/analysis"
	"github.com/discochess/cachesim/internal/setstore"
	"github.com/discochess/cachesim/internal/setstore/linkedlru"
	lrustore "github.com/discochess/cachesim/internal/setstore/lru"
	"github.com/discochess/cachesim/internal/stats"
	promstats "github.com/discochess/cachesim/internal/stats/prometheus"
	"github.com/discochess/cachesim/reporting"
)

// keyingEnv supplies the default for --keying.
const keyingEnv = "CACHESIM_KEYING"

var (
	// Global flags.
	verbose bool

	keyingName  string
	storeName   string
	formatName  string
	outputPath  string
	showMetrics bool
	analyze     bool
)

var rootCmd = &cobra.Command{
	Use:   "cachesim <trace>",
	Short: "Replay a memory-access trace against a set-associative LRU cache",
	Long: `cachesim reads a trace whose first three lines give the number of sets,
the lines per set and the line size, followed by one "R <hex>" or "W <hex>"
access per line. Every access is classified as a hit or a miss and a
summary is printed at the end.

Traces may be local files or objects in S3 or GCS, optionally compressed
with zstd (.zst) or gzip (.gz).

Examples:
  # Simulate a local trace
  cachesim trace.txt

  # Use the legacy keying where every line of a set shares one key
  cachesim --keying index trace.txt

  # Markdown report with per-set analysis, read from S3
  cachesim --format markdown --analyze s3://traces/loop.txt.zst`,
	Args:         cobra.ExactArgs(1),
	RunE:         runSimulate,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	defaultKeying := os.Getenv(keyingEnv)
	if defaultKeying == "" {
		defaultKeying = cachesim.KeyByTag.String()
	}
	rootCmd.Flags().StringVar(&keyingName, "keying", defaultKeying, "line keying: tag, index (env "+keyingEnv+")")
	rootCmd.Flags().StringVar(&storeName, "store", "linked", "set store: linked, golang-lru")
	rootCmd.Flags().StringVar(&formatName, "format", "text", "report format: text, markdown, json")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the report to a file instead of stdout")
	rootCmd.Flags().BoolVar(&showMetrics, "metrics", false, "print Prometheus metrics after the report")
	rootCmd.Flags().BoolVar(&analyze, "analyze", false, "include per-set analysis")
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewNop(), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func storeFactory(name string) (setstore.Factory, error) {
	switch name {
	case "linked", "":
		return linkedlru.Factory, nil
	case "golang-lru":
		return lrustore.Factory, nil
	}
	return nil, fmt.Errorf("unknown set store: %s", name)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// openOutput returns stdout or the --output file.
func openOutput(cmd *cobra.Command) (io.WriteCloser, error) {
	if outputPath == "" {
		return nopWriteCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	return f, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	keying, err := cachesim.ParseKeying(keyingName)
	if err != nil {
		return err
	}
	factory, err := storeFactory(storeName)
	if err != nil {
		return err
	}
	switch formatName {
	case "text", "markdown", "json":
	default:
		return fmt.Errorf("unknown format: %s", formatName)
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	ctx := commandContext(cmd)
	src, err := openSource(ctx, args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	var collector stats.Collector = stats.NewNoop()
	var prom *promstats.Collector
	if showMetrics {
		prom = promstats.New(nil)
		collector = prom
	}

	logger.Debug("simulating", zap.String("location", args[0]), zap.Stringer("keying", keying))
	res, err := src.runner(logger,
		cachesim.WithKeying(keying),
		cachesim.WithSetStore(factory),
		cachesim.WithStats(collector),
	).Run(ctx, src.name)
	if err != nil {
		return err
	}

	var metrics *analysis.Metrics
	if analyze {
		metrics = analysis.ComputeMetrics(res)
	}

	out, err := openOutput(cmd)
	if err != nil {
		return err
	}
	return emit(out, res, metrics, prom)
}

// emit writes the report, and the metrics when prom is non-nil, then
// closes out. A close error is returned alongside any write error.
func emit(out io.WriteCloser, res *cachesim.Result, m *analysis.Metrics, prom *promstats.Collector) (err error) {
	defer func() {
		if cerr := out.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing output: %w", cerr))
		}
	}()

	if formatName == "json" && prom != nil {
		values, err := prom.Values()
		if err != nil {
			return err
		}
		if err := reporting.WriteDocument(out, reporting.Document{Result: res, Analysis: m, Metrics: values}); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		return nil
	}

	if err := writeReport(out, res, m); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if prom != nil {
		fmt.Fprintln(out)
		if err := prom.WriteText(out); err != nil {
			return err
		}
	}
	return nil
}

func writeReport(w io.Writer, res *cachesim.Result, m *analysis.Metrics) error {
	switch formatName {
	case "markdown":
		reporting.WriteMarkdown(w, res, m)
		return nil
	case "json":
		return reporting.WriteJSON(w, res, m)
	}

	if err := reporting.WriteText(w, res); err != nil {
		return err
	}
	if m != nil {
		fmt.Fprintf(w, "\nSets touched     : %d of %d\n", m.SetsTouched, m.Sets)
		fmt.Fprintf(w, "Compulsory misses: %d\n", m.CompulsoryMisses)
		fmt.Fprintf(w, "Other misses     : %d\n", m.OtherMisses)
		fmt.Fprintf(w, "Concentration    : %.3f\n", m.Concentration)
	}
	return nil
}
