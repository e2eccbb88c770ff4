// Package archive maintains a SQLite catalogue of downloaded documents so
// a local tree can be counted and queried without walking it on every
// command. The catalogue is derived data: it can always be rebuilt from the
// output tree and is never consulted for resume decisions.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// DBFileName is the catalogue file kept under the output root.
const DBFileName = ".archive.db"

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	uri              TEXT PRIMARY KEY,
	category         TEXT NOT NULL,
	document_type    TEXT NOT NULL,
	authority        TEXT NOT NULL DEFAULT '',
	year             TEXT NOT NULL,
	number           TEXT NOT NULL,
	lang_and_version TEXT NOT NULL,
	path             TEXT NOT NULL,
	fetched_at       DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_pair ON documents(category, document_type);
CREATE INDEX IF NOT EXISTS idx_documents_year ON documents(year);
`

// Document is one catalogued download.
type Document struct {
	URI            string
	Category       string
	DocumentType   string
	Authority      string
	Year           string
	Number         string
	LangAndVersion string
	Path           string
	FetchedAt      time.Time
}

// Filter narrows catalogue queries; empty fields match everything.
type Filter struct {
	Category     string
	DocumentType string
	Year         string
	Number       string
}

// Store is the SQLite-backed catalogue.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the catalogue at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening catalogue: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the catalogue file path.
func (s *Store) Path() string {
	return s.path
}

// Upsert inserts or replaces one document row.
func (s *Store) Upsert(ctx context.Context, doc Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO documents
			(uri, category, document_type, authority, year, number, lang_and_version, path, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.URI, doc.Category, doc.DocumentType, doc.Authority,
		doc.Year, doc.Number, doc.LangAndVersion, doc.Path, doc.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", doc.URI, err)
	}
	return nil
}

// Clear removes every catalogued row, ahead of a rebuild.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("clear catalogue: %w", err)
	}
	return nil
}

// Count returns the number of catalogued documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// CountByPair returns document counts keyed by "category/documentType".
func (s *Store) CountByPair(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, document_type, COUNT(*)
		FROM documents
		GROUP BY category, document_type
		ORDER BY category, document_type`)
	if err != nil {
		return nil, fmt.Errorf("count by pair: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category, docType string
		var n int
		if err := rows.Scan(&category, &docType, &n); err != nil {
			return nil, fmt.Errorf("scan count row: %w", err)
		}
		counts[category+"/"+docType] = n
	}
	return counts, rows.Err()
}

// Find returns catalogued documents matching the filter, ordered by year
// then number.
func (s *Store) Find(ctx context.Context, f Filter) ([]Document, error) {
	query := `
		SELECT uri, category, document_type, authority, year, number, lang_and_version, path, fetched_at
		FROM documents`

	var conds []string
	var args []any
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.DocumentType != "" {
		conds = append(conds, "document_type = ?")
		args = append(args, f.DocumentType)
	}
	if f.Year != "" {
		conds = append(conds, "year = ?")
		args = append(args, f.Year)
	}
	if f.Number != "" {
		conds = append(conds, "number = ?")
		args = append(args, f.Number)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY year, number"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.URI, &d.Category, &d.DocumentType, &d.Authority,
			&d.Year, &d.Number, &d.LangAndVersion, &d.Path, &d.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
