package finlex

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"
)

// Outcome statuses recorded in the manifest.
const (
	OutcomeSuccess = "success"
	OutcomeSkipped = "skipped"
	OutcomeDryRun  = "dry-run"
	OutcomeError   = "error"
)

// File names written under a document directory.
const (
	PrimaryFileName = "main.xml"
	PDFFileName     = "main.pdf"
	ZipFileName     = "main.zip"
	MediaDirName    = "media"
)

// packageSuffix is the API path suffix serving the packaged akn bundle.
const packageSuffix = "/main.akn"

// Outcome is the immutable result of one fetch attempt.
type Outcome struct {
	URI       string    `json:"akn_uri"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Files     []string  `json:"files"`
	Error     string    `json:"error,omitempty"`
}

// FetchOptions configures per-document fetching.
type FetchOptions struct {
	OutputRoot string
	FetchPDF   bool
	FetchZip   bool
	FetchMedia bool
	Force      bool
	DryRun     bool
}

// Fetcher retrieves one document and its companion assets, writing them
// under a deterministic path below the output root. It is stateless.
type Fetcher struct {
	transport Getter
	logger    *slog.Logger
}

// NewFetcher creates a fetcher over the given transport.
func NewFetcher(transport Getter, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fetcher{transport: transport, logger: logger}
}

// Fetch downloads the document named by uri. The primary XML is mandatory:
// any failure fetching it yields an error outcome and nothing is recorded as
// written. PDF, zip package and media companions are best effort; their
// failures never downgrade a success.
//
// An existing primary file short-circuits the whole operation with a skipped
// outcome and zero network requests unless Force is set. The existence gate
// runs before the dry-run gate so a dry run still reports already-downloaded
// documents as skipped.
func (f *Fetcher) Fetch(ctx context.Context, uri string, opts FetchOptions) Outcome {
	outcome := Outcome{
		URI:       uri,
		Status:    OutcomeError,
		Timestamp: time.Now(),
	}

	coords, err := ParseURI(uri)
	if err != nil {
		outcome.Error = err.Error()
		f.logger.Error("unparseable uri", "uri", uri)
		return outcome
	}

	docDir := filepath.Join(opts.OutputRoot, coords.StoragePath())
	primaryPath := filepath.Join(docDir, PrimaryFileName)

	if _, err := os.Stat(primaryPath); err == nil && !opts.Force {
		outcome.Status = OutcomeSkipped
		outcome.Files = append(outcome.Files, primaryPath)
		f.logger.Info("skipping existing", "path", primaryPath)
		return outcome
	}

	if opts.DryRun {
		outcome.Status = OutcomeDryRun
		f.logger.Info("dry run, would download", "uri", uri, "dir", docDir)
		return outcome
	}

	if err := os.MkdirAll(docDir, 0o755); err != nil {
		outcome.Error = fmt.Sprintf("create directory: %v", err)
		f.logger.Error("create directory failed", "dir", docDir, "error", err)
		return outcome
	}

	apiPath := coords.APIPath()
	body, err := f.fetchPrimary(ctx, apiPath, primaryPath)
	if err != nil {
		outcome.Error = err.Error()
		f.logger.Error("primary fetch failed", "uri", uri, "error", err)
		return outcome
	}
	outcome.Files = append(outcome.Files, primaryPath)
	f.logger.Info("downloaded document", "path", primaryPath)

	if opts.FetchPDF {
		pdfPath := filepath.Join(docDir, PDFFileName)
		if f.fetchCompanion(ctx, apiPath+"/"+PDFFileName, AcceptPDF, pdfPath) {
			outcome.Files = append(outcome.Files, pdfPath)
		}
	}

	if opts.FetchZip {
		zipPath := filepath.Join(docDir, ZipFileName)
		if f.fetchCompanion(ctx, apiPath+packageSuffix, AcceptZIP, zipPath) {
			outcome.Files = append(outcome.Files, zipPath)
		}
	}

	if opts.FetchMedia {
		outcome.Files = append(outcome.Files, f.fetchMedia(ctx, apiPath, docDir, body)...)
	}

	outcome.Status = OutcomeSuccess
	return outcome
}

// fetchPrimary retrieves and writes the primary XML, returning its body for
// media extraction.
func (f *Fetcher) fetchPrimary(ctx context.Context, apiPath, primaryPath string) ([]byte, error) {
	resp, err := f.transport.Get(ctx, apiPath, nil, AcceptXML)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	if !resp.OK() {
		return nil, &APIError{StatusCode: resp.StatusCode, Path: apiPath}
	}
	if err := os.WriteFile(primaryPath, resp.Body, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", primaryPath, err)
	}
	return resp.Body, nil
}

// fetchCompanion retrieves an optional asset. A 404 is expected absence;
// any other failure is logged and swallowed. Returns whether a file was
// written.
func (f *Fetcher) fetchCompanion(ctx context.Context, apiPath, accept, dest string) bool {
	resp, err := f.transport.Get(ctx, apiPath, nil, accept)
	if err != nil {
		f.logger.Warn("companion fetch failed", "path", apiPath, "error", err)
		return false
	}
	switch {
	case resp.OK():
	case resp.StatusCode == 404:
		return false
	default:
		f.logger.Warn("companion fetch returned error status",
			"path", apiPath, "status", resp.StatusCode)
		return false
	}

	if err := os.WriteFile(dest, resp.Body, 0o644); err != nil {
		f.logger.Warn("companion write failed", "path", dest, "error", err)
		return false
	}
	f.logger.Info("downloaded companion", "path", dest)
	return true
}

// fetchMedia extracts media references from the primary body and fetches
// each one best effort into the media/ subdirectory.
func (f *Fetcher) fetchMedia(ctx context.Context, apiPath, docDir string, body []byte) []string {
	refs := ExtractMediaRefs(body)
	if len(refs) == 0 {
		return nil
	}

	mediaDir := filepath.Join(docDir, MediaDirName)
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		f.logger.Warn("create media directory failed", "dir", mediaDir, "error", err)
		return nil
	}

	var written []string
	for _, ref := range refs {
		dest := filepath.Join(mediaDir, path.Base(ref))
		if f.fetchCompanion(ctx, apiPath+"/"+ref, AcceptXML, dest) {
			written = append(written, dest)
		}
	}
	return written
}
