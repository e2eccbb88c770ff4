package finlex

import (
	"context"
	"encoding/json"
	"iter"
	"log/slog"
	"net/url"
	"strconv"
)

// MaxPageSize is the API's documented maximum page size for list requests.
// Requests for larger pages are clamped.
const MaxPageSize = 10

// DefaultLangAndVersion selects the Finnish current-version representation.
const DefaultLangAndVersion = "fin@"

// Change statuses reported by the listing endpoint.
const (
	ChangeNew      = "NEW"
	ChangeModified = "MODIFIED"
)

// ListItem is one identifier yielded by the listing iterator. Page records
// which list page produced the item so callers can checkpoint paging
// progress without re-deriving it.
type ListItem struct {
	URI          string
	ChangeStatus string
	Page         int
}

// ListConfig configures one paginated listing run. The zero value of every
// optional field means "unset".
type ListConfig struct {
	Category       string
	DocumentType   string
	LangAndVersion string // defaults to DefaultLangAndVersion
	StartYear      int    // 0 = no lower bound
	EndYear        int    // 0 = no upper bound
	PageSize       int    // clamped to MaxPageSize; defaults to MaxPageSize
	MaxPages       int    // 0 = fetch all pages
	StartPage      int    // defaults to 1; set from a checkpoint to resume
}

// listEntry mirrors one element of the JSON list response.
type listEntry struct {
	AknURI string `json:"akn_uri"`
	Status string `json:"status"`
}

// Lister enumerates document identifiers for one (category, documentType)
// pair. It is stateless; all listing state lives in the returned iterator.
type Lister struct {
	transport Getter
	logger    *slog.Logger
}

// NewLister creates a lister over the given transport.
func NewLister(transport Getter, logger *slog.Logger) *Lister {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Lister{transport: transport, logger: logger}
}

// List returns a lazy sequence of identifiers. Each page is requested only
// when the consumer pulls past the previous one, and the sequence is not
// restartable: re-ranging re-issues all requests from the start page.
//
// The sequence ends on the first of: the configured page limit, a failed or
// malformed page response (non-fatal truncation, items already yielded
// stand), an empty page, or a page shorter than the page size.
func (l *Lister) List(ctx context.Context, cfg ListConfig) iter.Seq[ListItem] {
	path := ListPath(cfg.Category, cfg.DocumentType)

	limit := cfg.PageSize
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	lang := cfg.LangAndVersion
	if lang == "" {
		lang = DefaultLangAndVersion
	}
	page := cfg.StartPage
	if page < 1 {
		page = 1
	}

	return func(yield func(ListItem) bool) {
		for {
			if cfg.MaxPages > 0 && page > cfg.MaxPages {
				l.logger.Info("page limit reached", "path", path, "max_pages", cfg.MaxPages)
				return
			}

			params := url.Values{}
			params.Set("format", "json")
			params.Set("page", strconv.Itoa(page))
			params.Set("limit", strconv.Itoa(limit))
			params.Set("langAndVersion", lang)
			if cfg.StartYear > 0 {
				params.Set("startYear", strconv.Itoa(cfg.StartYear))
			}
			if cfg.EndYear > 0 {
				params.Set("endYear", strconv.Itoa(cfg.EndYear))
			}

			l.logger.Info("fetching list page",
				"category", cfg.Category, "type", cfg.DocumentType, "page", page)

			resp, err := l.transport.Get(ctx, path, params, AcceptJSON)
			if err != nil {
				l.logger.Error("list request failed", "path", path, "page", page, "error", err)
				return
			}
			if !resp.OK() {
				l.logger.Error("list request failed",
					"path", path, "page", page, "status", resp.StatusCode)
				return
			}

			var entries []listEntry
			if err := json.Unmarshal(resp.Body, &entries); err != nil {
				// Treated like exhausted pagination, but logged with a
				// distinct reason so a short run is diagnosable.
				l.logger.Warn("list page not parseable, stopping",
					"path", path, "page", page, "reason", "malformed-body", "error", err)
				return
			}

			if len(entries) == 0 {
				l.logger.Info("pagination complete", "path", path, "reason", "end-of-data")
				return
			}

			for _, e := range entries {
				if !yield(ListItem{URI: e.AknURI, ChangeStatus: e.Status, Page: page}) {
					return
				}
			}

			if len(entries) < limit {
				l.logger.Info("last page reached", "path", path, "items", len(entries))
				return
			}
			page++
		}
	}
}
