package archive

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/finlex-cli/internal/finlex"
)

// Indexer rebuilds the catalogue from an output tree. It recognises
// documents by their primary file and derives coordinates back from the
// storage layout, so the catalogue never needs the manifest.
type Indexer struct {
	store  *Store
	logger *slog.Logger
}

// NewIndexer creates an indexer writing into store.
func NewIndexer(store *Store, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Indexer{store: store, logger: logger}
}

// Reindex clears the catalogue and walks outputRoot, cataloguing every
// document directory containing a primary file. Directories that do not
// match the storage layout are skipped with a log line. Returns the number
// of documents catalogued.
func (ix *Indexer) Reindex(ctx context.Context, outputRoot string) (int, error) {
	if err := ix.store.Clear(ctx); err != nil {
		return 0, err
	}

	count := 0
	err := filepath.WalkDir(outputRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != finlex.PrimaryFileName {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(outputRoot, filepath.Dir(path))
		if err != nil {
			return err
		}
		coords, ok := coordinatesFromStoragePath(rel)
		if !ok {
			ix.logger.Warn("unrecognised document directory", "path", rel)
			return nil
		}

		info, err := d.Info()
		fetchedAt := time.Now()
		if err == nil {
			fetchedAt = info.ModTime()
		}

		doc := Document{
			URI:            coords.APIPath(),
			Category:       coords.Category,
			DocumentType:   coords.DocumentType,
			Authority:      coords.Authority,
			Year:           coords.Year,
			Number:         coords.Number,
			LangAndVersion: coords.LangAndVersion,
			Path:           rel,
			FetchedAt:      fetchedAt,
		}
		if err := ix.store.Upsert(ctx, doc); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return count, err
	}

	ix.logger.Info("catalogue rebuilt", "documents", count)
	return count, nil
}

// coordinatesFromStoragePath inverts Coordinates.StoragePath. The layout is
// category/type/[authority/]year/number/langAndVersion.
func coordinatesFromStoragePath(rel string) (finlex.Coordinates, bool) {
	segments := strings.Split(filepath.ToSlash(rel), "/")
	switch {
	case len(segments) == 6 && segments[1] == finlex.DocTypeAuthorityRegulation:
		return finlex.Coordinates{
			Category:       segments[0],
			DocumentType:   segments[1],
			Authority:      segments[2],
			Year:           segments[3],
			Number:         segments[4],
			LangAndVersion: segments[5],
		}, true
	case len(segments) == 5:
		return finlex.Coordinates{
			Category:       segments[0],
			DocumentType:   segments[1],
			Year:           segments[2],
			Number:         segments[3],
			LangAndVersion: segments[4],
		}, true
	}
	return finlex.Coordinates{}, false
}
