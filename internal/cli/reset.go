package cli

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/finlex-cli/internal/state"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the download checkpoint",
	Long: `Deletes the checkpoint file so the next download starts fresh. The
manifest and downloaded files are left untouched.`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	checkpoint := state.NewCheckpoint(
		filepath.Join(cfg.Output, state.CheckpointFileName), slog.New(slog.DiscardHandler))
	checkpoint.Reset()
	cmd.Println("Checkpoint reset.")
	return nil
}
