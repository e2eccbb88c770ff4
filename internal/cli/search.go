package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/finlex-cli/internal/archive"
)

var (
	searchCategory string
	searchType     string
	searchYear     string
	searchNumber   string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Query the local document catalogue",
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "filter by category")
	searchCmd.Flags().StringVar(&searchType, "type", "", "filter by document type")
	searchCmd.Flags().StringVar(&searchYear, "year", "", "filter by year")
	searchCmd.Flags().StringVar(&searchNumber, "number", "", "filter by document number")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	dbPath := filepath.Join(cfg.Output, archive.DBFileName)
	if _, err := os.Stat(dbPath); err != nil {
		cmd.Println("Catalogue not built yet; run 'finlex index' first.")
		return nil
	}

	store, err := archive.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	docs, err := store.Find(cmd.Context(), archive.Filter{
		Category:     searchCategory,
		DocumentType: searchType,
		Year:         searchYear,
		Number:       searchNumber,
	})
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}
	for _, doc := range docs {
		cmd.Printf("%s/%s %s/%s %s  %s\n",
			doc.Category, doc.DocumentType, doc.Year, doc.Number,
			doc.LangAndVersion, doc.Path)
	}
	cmd.Printf("%d document(s).\n", len(docs))
	return nil
}
