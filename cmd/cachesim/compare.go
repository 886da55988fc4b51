package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/cachesim"
	"github.com/discochess/cachesim/analysis"
	"github.com/discochess/cachesim/reporting"
)

var compareCmd = &cobra.Command{
	Use:   "compare <trace>",
	Short: "Compare tag keying against index keying on one trace",
	Long: `Replay a trace twice, once keying lines by tag and once by set index,
and report where the two runs classify accesses differently.

Examples:
  cachesim compare trace.txt
  cachesim compare --format markdown gs://traces/matrix.txt.gz`,
	Args:         cobra.ExactArgs(1),
	RunE:         runCompare,
	SilenceUsage: true,
}

var compareFormat string

func init() {
	compareCmd.Flags().StringVar(&compareFormat, "format", "text", "report format: text, markdown")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	if compareFormat != "text" && compareFormat != "markdown" {
		return fmt.Errorf("unknown format: %s", compareFormat)
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

	runner := src.runner(logger)
	results := make([]*cachesim.Result, 0, 2)
	for _, k := range []cachesim.Keying{cachesim.KeyByTag, cachesim.KeyByIndex} {
		res, err := runner.Run(ctx, src.name, cachesim.WithKeying(k))
		if err != nil {
			return fmt.Errorf("%s keying: %w", k, err)
		}
		results = append(results, res)
	}

	cs := src.store.Stats()
	logger.Debug("trace cache", zap.Int64("hits", cs.Hits), zap.Int64("misses", cs.Misses))

	comp, err := analysis.ComparePolicies(results[0], results[1])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if compareFormat == "markdown" {
		r := reporting.NewMarkdownReport(w)
		r.WriteHeader("Keying Comparison")
		r.WriteConfiguration(results[0].Geometry, results[0].Keying)
		r.WriteComparison(comp)
		r.WriteFooter()
		return nil
	}
	fmt.Fprintln(w, comp.Summary())
	return nil
}
