package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tempalloc/internal/logger"
	"github.com/joshuapare/tempalloc/internal/report"
	"github.com/joshuapare/tempalloc/internal/workload"
)

var (
	benchDepth      int
	benchIterations int
	benchSites      int
	benchSeed       uint64
	benchPattern    string
)

func init() {
	cmd := newBenchCmd()
	cmd.Flags().IntVar(&benchDepth, "depth", 0, "Recursion depth (overrides config)")
	cmd.Flags().IntVar(&benchIterations, "iterations", 0, "Iterations per pattern (overrides config)")
	cmd.Flags().IntVar(&benchSites, "sites", 0, "Call sites per frame (overrides config)")
	cmd.Flags().Uint64Var(&benchSeed, "seed", 0, "Size generator seed (overrides config)")
	cmd.Flags().StringVar(&benchPattern, "pattern", "", "Run only this pattern: recursive or loop")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare cached and plain heap allocation",
		Long: `The bench command runs synthetic recursive and loop workloads twice, once
allocating straight from the heap and once through the cache, and prints heap
calls, cache hits, peak live bytes and elapsed time for each.

Example:
  tempctl bench
  tempctl bench --depth 64 --iterations 10000
  tempctl bench --pattern loop --markdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd.Context())
		},
	}
	return cmd
}

// benchParams merges command flags over the configured bench section.
func benchParams() (workload.Params, error) {
	conf, err := loadedConfig()
	if err != nil {
		return workload.Params{}, err
	}
	b := conf.Bench
	p := workload.Params{
		Depth:      b.Depth,
		Iterations: b.Iterations,
		Sites:      b.Sites,
		MinSize:    b.MinSize,
		MaxSize:    b.MaxSize,
		Seed:       b.Seed,
	}
	if benchDepth > 0 {
		p.Depth = benchDepth
	}
	if benchIterations > 0 {
		p.Iterations = benchIterations
	}
	if benchSites > 0 {
		p.Sites = benchSites
	}
	if benchSeed > 0 {
		p.Seed = benchSeed
	}
	return p, p.Validate()
}

func runBench(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	p, err := benchParams()
	if err != nil {
		return err
	}
	conf, err := loadedConfig()
	if err != nil {
		return err
	}
	alloc, err := conf.Allocator()
	if err != nil {
		return err
	}
	opts := conf.CacheOptions(logger.L)

	printVerbose("Running depth=%d iterations=%d sites=%d sizes=[%d, %d] heap=%s\n",
		p.Depth, p.Iterations, p.Sites, p.MinSize, p.MaxSize, conf.Heap)

	var results []workload.Result
	if benchPattern == "" {
		results, err = workload.Run(ctx, alloc, p, opts)
		if err != nil {
			return err
		}
	} else {
		for _, strategy := range []string{workload.Plain, workload.Cached} {
			r, err := workload.RunOne(ctx, alloc, p, opts, benchPattern, strategy)
			if err != nil {
				return err
			}
			results = append(results, r)
		}
	}

	rows := make([]report.Row, 0, len(results))
	for _, r := range results {
		logger.Info("workload finished", "name", r.Name(), "heapCalls", r.HeapCalls,
			"hits", r.Hits, "peak", r.PeakBytes, "elapsed", r.Elapsed)
		rows = append(rows, report.Row{
			Name:      r.Name(),
			HeapCalls: r.HeapCalls,
			Hits:      r.Hits,
			PeakBytes: r.PeakBytes,
			Elapsed:   r.Elapsed,
		})
	}

	if jsonOut {
		return printJSON(rows)
	}
	if quiet {
		return nil
	}
	pr, err := printer()
	if err != nil {
		return err
	}
	return report.Compare(os.Stdout, rows, tableFormat(), pr)
}
