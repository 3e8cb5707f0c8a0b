package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/dagkit/config"
	"github.com/kbukum/dagkit/version"
)

var rootCmd = &cobra.Command{
	Use:   "dagkit",
	Short: "dagkit executes DAGs of typed operations over columnar data",
	Long: `dagkit holds a directed acyclic graph of typed operations and runs it
in dependency order: independent nodes execute concurrently, failed nodes
are retried with exponential backoff, and results land in a shared frame
of named float64 series.`,
	Version:       version.Short(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dagkit:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to config.yml (skips the search paths)")
	rootCmd.PersistentFlags().String("env-file", "", "path to a .env file")
}

// loadConfig turns the persistent flags into loader options and loads the
// full configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var opts []config.LoaderOption
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	if path, _ := cmd.Flags().GetString("env-file"); path != "" {
		opts = append(opts, config.WithEnvFile(path))
	}
	return config.Load(opts...)
}
