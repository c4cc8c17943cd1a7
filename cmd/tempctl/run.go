package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tempalloc/cache"
	"github.com/joshuapare/tempalloc/internal/logger"
	"github.com/joshuapare/tempalloc/internal/report"
	"github.com/joshuapare/tempalloc/internal/trace"
)

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <trace.yaml>...",
		Short: "Replay trace scripts against a cache",
		Long: `The run command replays one or more YAML trace scripts against a single
cache and prints the resulting statistics. Scripts run in order and share
sites, so a later script can observe buffers cached by an earlier one.

Example:
  tempctl run testdata/recursion.yaml
  tempctl run setup.yaml steady.yaml --json
  TEMPALLOC_HEAP=mmap tempctl run recursion.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), args)
		},
	}
	return cmd
}

// RunResult is the JSON form of a replay.
type RunResult struct {
	Scripts []string    `json:"scripts"`
	Ops     int         `json:"ops"`
	Stats   cache.Stats `json:"stats"`
}

func runRun(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	conf, err := loadedConfig()
	if err != nil {
		return err
	}
	alloc, err := conf.Allocator()
	if err != nil {
		return err
	}

	r := trace.NewReplayer(alloc, conf.CacheOptions(logger.L))
	defer r.Close()

	result := RunResult{}
	for _, path := range args {
		printVerbose("Replaying %s\n", path)
		s, err := trace.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load trace: %w", err)
		}
		if err := r.Run(ctx, s); err != nil {
			logger.Error("trace failed", "path", path, "error", err)
			return err
		}
		result.Scripts = append(result.Scripts, s.Name)
		result.Ops += len(s.Ops)
	}
	result.Stats = r.Cache().Stats()
	logger.Info("traces replayed", "scripts", len(args), "ops", result.Ops, "live", result.Stats.LiveBytes)

	if jsonOut {
		return printJSON(result)
	}
	if quiet {
		return nil
	}

	p, err := printer()
	if err != nil {
		return err
	}
	printInfo("Replayed %s ops from %d script(s)\n\n", p.Int(int64(result.Ops)), len(args))
	return report.Stats(os.Stdout, result.Stats, tableFormat(), p)
}
