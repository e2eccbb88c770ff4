// Package cli provides the finlex command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/finlex-cli/internal/config"
)

// Version is set at build time.
var Version = "0.1.0"

var (
	cfgFile   string
	outputDir string
	verbose   bool

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "finlex",
	Short: "Download Akoma Ntoso documents from the Finlex Open Data API",
	Long: `finlex batch-downloads Finnish legislation, judgments and other legal
documents from the Finlex Open Data API into a local directory tree.

Runs are paced, retried and resumable: progress is checkpointed after every
document, and an interrupted run picks up where it stopped with --resume.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("output") || cmd.InheritedFlags().Changed("output") {
			cfg.Output = outputDir
		}
		if verbose {
			cfg.LogLevel = "debug"
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultFileName,
		"path to TOML config file")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "./finlex-data",
		"output directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
}

// Execute runs the command tree and maps the result to a process exit code:
// 0 clean, 1 on failure, 130 on interruption.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "interrupted")
			return 130
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
