// Package pipeline wires the lister, fetcher, checkpoint and manifest into
// a sequential, resumable download run.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/custodia-labs/finlex-cli/internal/finlex"
	"github.com/custodia-labs/finlex-cli/internal/state"
)

// CategoryAuthorityRegulation is the pseudo-category selecting only
// authority regulations; it maps to the doc category with a single document
// type.
const CategoryAuthorityRegulation = finlex.DocTypeAuthorityRegulation

// Options configures one pipeline run. Categories may include the
// authority-regulation pseudo-category alongside act, judgment and doc.
type Options struct {
	OutputRoot     string
	Categories     []string
	Years          int
	YearOverrides  map[string]int
	LangAndVersion string
	PageSize       int
	MaxPages       int
	FetchPDF       bool
	FetchZip       bool
	FetchMedia     bool
	Force          bool
	DryRun         bool
	Resume         bool
}

// Runner drives the download pipeline. Each (category, documentType) pair
// is fully drained before the next begins, and items within a pair are
// processed one at a time in listing order.
type Runner struct {
	lister     *finlex.Lister
	fetcher    *finlex.Fetcher
	checkpoint *state.Checkpoint
	manifest   *state.Manifest
	logger     *slog.Logger
}

// NewRunner creates a runner over the given transport and stores.
func NewRunner(
	transport finlex.Getter,
	checkpoint *state.Checkpoint,
	manifest *state.Manifest,
	logger *slog.Logger,
) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		lister:     finlex.NewLister(transport, logger),
		fetcher:    finlex.NewFetcher(transport, logger),
		checkpoint: checkpoint,
		manifest:   manifest,
		logger:     logger,
	}
}

// Run executes the pipeline for every selected category. It returns the
// manifest summary and, when the context was cancelled, the cancellation
// error; the checkpoint reflects all completed work either way.
func (r *Runner) Run(ctx context.Context, opts Options) (state.Summary, error) {
	runID := uuid.NewString()
	r.manifest.SetRunID(runID)
	r.logger.Info("starting run",
		"run_id", runID, "output", opts.OutputRoot, "categories", opts.Categories)

	fetchOpts := finlex.FetchOptions{
		OutputRoot: opts.OutputRoot,
		FetchPDF:   opts.FetchPDF,
		FetchZip:   opts.FetchZip,
		FetchMedia: opts.FetchMedia,
		Force:      opts.Force,
		DryRun:     opts.DryRun,
	}

	for _, selected := range opts.Categories {
		category, docTypes := resolveCategory(selected)

		years := opts.Years
		if override, ok := opts.YearOverrides[selected]; ok && override > 0 {
			years = override
		}
		startYear, endYear := finlex.YearRange(years)
		r.logger.Info("processing category",
			"category", selected, "start_year", startYear, "end_year", endYear)

		for _, docType := range docTypes {
			if err := ctx.Err(); err != nil {
				return r.manifest.Summary(), err
			}
			if err := r.runPair(ctx, category, docType, startYear, endYear, opts, fetchOpts); err != nil {
				return r.manifest.Summary(), err
			}
		}
	}

	summary := r.manifest.Summary()
	r.logger.Info("run complete",
		"run_id", runID, "success", summary.Success,
		"skipped", summary.Skipped, "errors", summary.Error)
	return summary, nil
}

// runPair drains all pages for one (category, documentType) pair.
func (r *Runner) runPair(
	ctx context.Context,
	category, docType string,
	startYear, endYear int,
	opts Options,
	fetchOpts finlex.FetchOptions,
) error {
	startPage := 1
	if opts.Resume {
		startPage = r.checkpoint.ResumePageFor(category, docType)
		if startPage > 1 {
			r.logger.Info("resuming", "category", category, "type", docType, "page", startPage)
		}
	}

	r.checkpoint.StartSession(category, docType)

	cfg := finlex.ListConfig{
		Category:       category,
		DocumentType:   docType,
		LangAndVersion: opts.LangAndVersion,
		StartYear:      startYear,
		EndYear:        endYear,
		PageSize:       opts.PageSize,
		MaxPages:       opts.MaxPages,
		StartPage:      startPage,
	}

	for item := range r.lister.List(ctx, cfg) {
		// Stop issuing new requests on interruption; already-recorded
		// state stays flushed.
		if err := ctx.Err(); err != nil {
			return err
		}

		if r.checkpoint.IsCompleted(item.URI) {
			r.logger.Debug("already completed", "uri", item.URI)
			continue
		}

		outcome := r.fetcher.Fetch(ctx, item.URI, fetchOpts)
		r.manifest.Add(outcome)

		if outcome.Status == finlex.OutcomeSuccess || outcome.Status == finlex.OutcomeSkipped {
			r.checkpoint.MarkCompleted(item.URI)
		}
		r.checkpoint.SetPage(item.Page)
	}

	return ctx.Err()
}

// resolveCategory maps a selected category onto the API category and the
// document types to drain.
func resolveCategory(selected string) (string, []string) {
	if selected == CategoryAuthorityRegulation {
		return finlex.CategoryDoc, []string{finlex.DocTypeAuthorityRegulation}
	}
	return selected, finlex.DocumentTypes[selected]
}
