package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/joshuapare/tempalloc/internal/config"
	"github.com/joshuapare/tempalloc/internal/logger"
	"github.com/joshuapare/tempalloc/internal/report"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	markdown   bool
	configPath string
	logDir     string
	locale     string
)

var (
	// Set by PersistentPreRunE
	cfg      *config.Config
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "tempctl",
	Short: "Exercise and measure the call-site temporary memory cache",
	Long: `tempctl replays scripted cache operations and benchmarks the temporary
memory cache against plain heap allocation. Configuration comes from a YAML or
JSON file, overridden by TEMPALLOC_* environment variables.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&markdown, "markdown", false, "Render tables as markdown")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Write daily JSON log files to this directory")
	rootCmd.PersistentFlags().StringVar(&locale, "locale", "en", "Locale for number formatting (BCP 47)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and initializes logging.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfg, err = config.Load(configPath); err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	dir := cfg.Log.Dir
	if logDir != "" {
		dir = logDir
	}
	opts := logger.Options{
		Enabled: verbose || dir != "",
		LogDir:  dir,
		Level:   level,
	}
	if verbose {
		opts.Level = slog.LevelDebug
	}

	closeLog, err = logger.Init(opts)
	if err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}
	logger.Debug("configuration loaded", "path", configPath, "heap", cfg.Heap)
	return nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// tableFormat maps --markdown to a report format.
func tableFormat() report.Format {
	if markdown {
		return report.Markdown
	}
	return report.Text
}

// printer builds a number printer for --locale.
func printer() (*report.Printer, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return report.NewPrinter(tag), nil
}

// loadedConfig returns the configuration, loading defaults when setup did not
// run (direct calls from tests).
func loadedConfig() (*config.Config, error) {
	if cfg != nil {
		return cfg, nil
	}
	return config.Load(configPath)
}
