package cli

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/finlex-cli/internal/archive"
	"github.com/custodia-labs/finlex-cli/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show checkpoint, manifest and catalogue status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.DiscardHandler)

	checkpoint := state.NewCheckpoint(
		filepath.Join(cfg.Output, state.CheckpointFileName), logger)
	if checkpoint.Load() {
		pair := "-"
		if category, docType := checkpoint.ActivePair(); category != "" {
			pair = category + "/" + docType
		}
		cmd.Printf("Checkpoint: %d completed, page %d (%s)\n",
			checkpoint.CompletedCount(), checkpoint.CurrentPage(), pair)
	} else {
		cmd.Println("Checkpoint: none")
	}

	manifest := state.NewManifest(
		filepath.Join(cfg.Output, state.ManifestFileName), logger)
	s := manifest.Summary()
	cmd.Printf("Manifest:   %d entries (%d success, %d skipped, %d errors, %d dry-run)\n",
		s.Total, s.Success, s.Skipped, s.Error, s.DryRun)

	dbPath := filepath.Join(cfg.Output, archive.DBFileName)
	if _, err := os.Stat(dbPath); err != nil {
		cmd.Println("Catalogue:  not built (run 'finlex index')")
		return nil
	}
	store, err := archive.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	total, err := store.Count(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Printf("Catalogue:  %d documents\n", total)

	counts, err := store.CountByPair(cmd.Context())
	if err != nil {
		return err
	}
	pairs := make([]string, 0, len(counts))
	for pair := range counts {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)
	for _, pair := range pairs {
		cmd.Printf("  %-40s %d\n", pair, counts[pair])
	}
	return nil
}
