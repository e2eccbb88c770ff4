package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/finlex-cli/internal/archive"
	"github.com/custodia-labs/finlex-cli/internal/logging"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the local document catalogue",
	Long: `Walks the output tree and rebuilds the SQLite catalogue of downloaded
documents used by 'finlex status' and 'finlex search'.`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	logger, closeLog := logging.Setup("", cfg.Level())
	defer closeLog()

	store, err := archive.Open(filepath.Join(cfg.Output, archive.DBFileName))
	if err != nil {
		return err
	}
	defer store.Close()

	indexer := archive.NewIndexer(store, logger)
	count, err := indexer.Reindex(cmd.Context(), cfg.Output)
	if err != nil {
		return err
	}

	cmd.Printf("Catalogued %d documents.\n", count)
	return nil
}
