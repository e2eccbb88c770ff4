package state

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/finlex-cli/internal/finlex"
)

// ManifestFileName is the manifest file kept under the output root.
const ManifestFileName = "manifest.json"

// manifestFile is the on-disk form: summary counts followed by the full
// ordered entry list. Every append rewrites the whole file, so there is no
// partial-write tearing.
type manifestFile struct {
	UpdatedAt    time.Time        `json:"updated_at"`
	RunID        string           `json:"run_id,omitempty"`
	TotalEntries int              `json:"total_entries"`
	SuccessCount int              `json:"success_count"`
	SkippedCount int              `json:"skipped_count"`
	ErrorCount   int              `json:"error_count"`
	DryRunCount  int              `json:"dry_run_count"`
	Entries      []finlex.Outcome `json:"entries"`
}

// Summary holds outcome counts by status. Dry-run entries count toward
// Total and DryRun only, never the other buckets.
type Summary struct {
	Total   int
	Success int
	Skipped int
	Error   int
	DryRun  int
}

// Manifest is the append-only audit log of fetch outcomes. Its lifecycle is
// independent of the checkpoint: resetting the checkpoint does not clear it,
// and prior history is best effort, never authoritative for resume
// decisions.
type Manifest struct {
	mu      sync.Mutex
	path    string
	logger  *slog.Logger
	runID   string
	entries []finlex.Outcome
}

// NewManifest opens the manifest at path, loading prior entries if the file
// exists. A missing or corrupt file starts an empty manifest.
func NewManifest(path string, logger *slog.Logger) *Manifest {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Manifest{path: path, logger: logger}
	m.load()
	return m
}

func (m *Manifest) load() {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("failed to read manifest", "path", m.path, "error", err)
		}
		return
	}

	var file manifestFile
	if err := json.Unmarshal(data, &file); err != nil {
		m.logger.Warn("corrupt manifest, starting empty", "path", m.path, "error", err)
		return
	}
	m.entries = file.Entries
	m.logger.Info("loaded manifest", "entries", len(m.entries))
}

// SetRunID stamps the identifier of the current run into the manifest
// header on the next write.
func (m *Manifest) SetRunID(runID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runID = runID
}

// Add appends an outcome and rewrites the manifest file. A failed write is
// logged; the in-memory log keeps the entry either way.
func (m *Manifest) Add(outcome finlex.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, outcome)
	if err := m.save(); err != nil {
		m.logger.Error("failed to save manifest", "path", m.path, "error", err)
	}
}

// save rewrites the whole manifest file (caller must hold the lock).
func (m *Manifest) save() error {
	s := m.summary()
	file := manifestFile{
		UpdatedAt:    time.Now(),
		RunID:        m.runID,
		TotalEntries: s.Total,
		SuccessCount: s.Success,
		SkippedCount: s.Skipped,
		ErrorCount:   s.Error,
		DryRunCount:  s.DryRun,
		Entries:      m.entries,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, m.path)
}

// Summary returns outcome counts by status.
func (m *Manifest) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summary()
}

func (m *Manifest) summary() Summary {
	s := Summary{Total: len(m.entries)}
	for _, e := range m.entries {
		switch e.Status {
		case finlex.OutcomeSuccess:
			s.Success++
		case finlex.OutcomeSkipped:
			s.Skipped++
		case finlex.OutcomeError:
			s.Error++
		case finlex.OutcomeDryRun:
			s.DryRun++
		}
	}
	return s
}

// Entries returns a copy of the recorded outcomes in order.
func (m *Manifest) Entries() []finlex.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]finlex.Outcome, len(m.entries))
	copy(out, m.entries)
	return out
}
