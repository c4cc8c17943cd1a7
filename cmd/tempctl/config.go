package main

import (
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newConfigCmd())
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `The config command prints the configuration after defaults, the config
file and TEMPALLOC_* environment overrides have been applied.

Example:
  tempctl config
  tempctl config -c tempalloc.yaml --json
  TEMPALLOC_BENCH_DEPTH=8 tempctl config`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig()
		},
	}
}

func runConfig() error {
	conf, err := loadedConfig()
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(conf)
	}
	out, err := conf.YAML()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}
