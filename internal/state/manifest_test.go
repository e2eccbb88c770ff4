package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finlex-cli/internal/finlex"
)

func outcome(uri, status string) finlex.Outcome {
	return finlex.Outcome{URI: uri, Status: status, Timestamp: time.Now()}
}

func TestManifestSummary(t *testing.T) {
	m := NewManifest(filepath.Join(t.TempDir(), ManifestFileName), nil)

	m.Add(outcome("/a", finlex.OutcomeSuccess))
	m.Add(outcome("/b", finlex.OutcomeSuccess))
	m.Add(outcome("/c", finlex.OutcomeSkipped))
	m.Add(outcome("/d", finlex.OutcomeError))

	s := m.Summary()
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Success)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 1, s.Error)
	assert.Equal(t, 0, s.DryRun)
}

func TestManifestDryRunCountsSeparately(t *testing.T) {
	m := NewManifest(filepath.Join(t.TempDir(), ManifestFileName), nil)

	m.Add(outcome("/a", finlex.OutcomeSuccess))
	m.Add(outcome("/b", finlex.OutcomeDryRun))

	s := m.Summary()
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Success)
	assert.Equal(t, 1, s.DryRun)
	assert.Equal(t, 0, s.Skipped)
	assert.Equal(t, 0, s.Error)
}

func TestManifestPersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestFileName)

	m := NewManifest(path, nil)
	m.SetRunID("run-1")
	m.Add(outcome("/a", finlex.OutcomeSuccess))
	m.Add(outcome("/b", finlex.OutcomeError))

	reloaded := NewManifest(path, nil)
	entries := reloaded.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "/a", entries[0].URI)
	assert.Equal(t, "/b", entries[1].URI)

	// Appending after reload keeps prior history.
	reloaded.Add(outcome("/c", finlex.OutcomeSkipped))
	s := reloaded.Summary()
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Success)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 1, s.Error)
}

func TestManifestToleratesMissingFile(t *testing.T) {
	m := NewManifest(filepath.Join(t.TempDir(), ManifestFileName), nil)
	assert.Empty(t, m.Entries())
	assert.Equal(t, Summary{}, m.Summary())
}

func TestManifestToleratesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestFileName)
	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0o644))

	m := NewManifest(path, nil)
	assert.Empty(t, m.Entries())

	// The store still works after discarding the corrupt history.
	m.Add(outcome("/a", finlex.OutcomeSuccess))
	assert.Equal(t, 1, m.Summary().Total)
}
