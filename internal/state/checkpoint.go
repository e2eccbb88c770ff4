// Package state persists pipeline progress so interrupted runs resume
// without re-fetching completed work. The checkpoint is the sole source of
// resume truth; the manifest is an independent audit log.
package state

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// CheckpointFileName is the checkpoint file kept under the output root.
const CheckpointFileName = ".state.json"

// checkpointFile is the on-disk form. The completed set serializes to a
// sorted array; order on disk carries no meaning.
type checkpointFile struct {
	CurrentCategory     string     `json:"current_category,omitempty"`
	CurrentDocumentType string     `json:"current_document_type,omitempty"`
	CurrentPage         int        `json:"current_page"`
	LastURI             string     `json:"last_uri,omitempty"`
	CompletedURIs       []string   `json:"completed_uris"`
	StartedAt           *time.Time `json:"started_at,omitempty"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty"`
}

// Checkpoint tracks paging and completion progress for a run. Every mutating
// call persists synchronously before returning, so a run interrupted at any
// point leaves the file consistent with exactly the work done so far. A
// failed save is logged and never aborts the run.
type Checkpoint struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger

	currentCategory     string
	currentDocumentType string
	currentPage         int
	lastURI             string
	completed           map[string]struct{}
	startedAt           time.Time
	updatedAt           time.Time
}

// NewCheckpoint creates an empty checkpoint backed by the given file.
func NewCheckpoint(path string, logger *slog.Logger) *Checkpoint {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Checkpoint{
		path:        path,
		logger:      logger,
		currentPage: 1,
		completed:   make(map[string]struct{}),
	}
}

// Load reads persisted state if present. It returns whether a prior
// checkpoint existed; a missing or corrupt file is non-fatal and leaves a
// fresh checkpoint in place.
func (c *Checkpoint) Load() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("failed to read checkpoint", "path", c.path, "error", err)
		} else {
			c.logger.Info("no existing checkpoint", "path", c.path)
		}
		return false
	}

	var file checkpointFile
	if err := json.Unmarshal(data, &file); err != nil {
		c.logger.Warn("corrupt checkpoint, starting fresh", "path", c.path, "error", err)
		return false
	}

	c.currentCategory = file.CurrentCategory
	c.currentDocumentType = file.CurrentDocumentType
	c.currentPage = file.CurrentPage
	if c.currentPage < 1 {
		c.currentPage = 1
	}
	c.lastURI = file.LastURI
	c.completed = make(map[string]struct{}, len(file.CompletedURIs))
	for _, uri := range file.CompletedURIs {
		c.completed[uri] = struct{}{}
	}
	if file.StartedAt != nil {
		c.startedAt = *file.StartedAt
	}
	if file.UpdatedAt != nil {
		c.updatedAt = *file.UpdatedAt
	}

	c.logger.Info("loaded checkpoint",
		"page", c.currentPage, "completed", len(c.completed))
	return true
}

// Save stamps the update time and replaces the checkpoint file.
func (c *Checkpoint) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save()
}

// save writes the checkpoint (caller must hold the lock). The file is
// written whole to a temp path and renamed into place.
func (c *Checkpoint) save() error {
	c.updatedAt = time.Now()

	uris := make([]string, 0, len(c.completed))
	for uri := range c.completed {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	file := checkpointFile{
		CurrentCategory:     c.currentCategory,
		CurrentDocumentType: c.currentDocumentType,
		CurrentPage:         c.currentPage,
		LastURI:             c.lastURI,
		CompletedURIs:       uris,
		UpdatedAt:           &c.updatedAt,
	}
	if !c.startedAt.IsZero() {
		file.StartedAt = &c.startedAt
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

// persist saves and logs instead of failing; checkpoint persistence is best
// effort and must not abort the run.
func (c *Checkpoint) persist() {
	if err := c.save(); err != nil {
		c.logger.Error("failed to save checkpoint", "path", c.path, "error", err)
	}
}

// StartSession records the active (category, documentType) pair. The
// started-at stamp is set once on the first-ever session and never
// overwritten.
func (c *Checkpoint) StartSession(category, documentType string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.startedAt.IsZero() {
		c.startedAt = time.Now()
	}
	c.currentCategory = category
	c.currentDocumentType = documentType
	c.persist()
}

// MarkCompleted adds a URI to the completed set. Marking an already-present
// URI is a no-op on content.
func (c *Checkpoint) MarkCompleted(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.completed[uri] = struct{}{}
	c.lastURI = uri
	c.persist()
}

// IsCompleted reports whether a URI has been completed.
func (c *Checkpoint) IsCompleted(uri string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.completed[uri]
	return ok
}

// CompletedCount returns the size of the completed set.
func (c *Checkpoint) CompletedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.completed)
}

// ActivePair returns the stored active (category, documentType) pair.
func (c *Checkpoint) ActivePair() (category, documentType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentCategory, c.currentDocumentType
}

// CurrentPage returns the stored page counter.
func (c *Checkpoint) CurrentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPage
}

// SetPage records the page currently being processed.
func (c *Checkpoint) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.currentPage = page
	c.persist()
}

// ResumePageFor returns the stored page only when both the category and
// document type match the stored active pair exactly; any other pair starts
// from page 1. This guards against resuming page counters across unrelated
// pairs sharing one checkpoint file.
func (c *Checkpoint) ResumePageFor(category, documentType string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.currentCategory == category && c.currentDocumentType == documentType {
		return c.currentPage
	}
	return 1
}

// Reset discards in-memory state and deletes the persisted file if present.
func (c *Checkpoint) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.currentCategory = ""
	c.currentDocumentType = ""
	c.currentPage = 1
	c.lastURI = ""
	c.completed = make(map[string]struct{})
	c.startedAt = time.Time{}
	c.updatedAt = time.Time{}

	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		c.logger.Warn("failed to remove checkpoint file", "path", c.path, "error", err)
	}
	c.logger.Info("checkpoint reset", "path", c.path)
}
