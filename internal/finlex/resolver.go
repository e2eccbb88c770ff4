package finlex

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// APIRoot is the path prefix of the Finlex Open Data API, stripped from
// absolute akn URIs before grammar matching.
const APIRoot = "/finlex/avoindata/v1"

// Document categories recognised by the standard grammar.
const (
	CategoryAct      = "act"
	CategoryJudgment = "judgment"
	CategoryDoc      = "doc"
)

// DocTypeAuthorityRegulation is the only document type carrying an
// authority segment in its akn path.
const DocTypeAuthorityRegulation = "authority-regulation"

// Coordinates is the structured decomposition of an akn URI.
// Authority is set if and only if DocumentType is authority-regulation.
type Coordinates struct {
	Category       string
	DocumentType   string
	Year           string
	Number         string
	LangAndVersion string
	Authority      string
}

var (
	// Authority-regulation paths are a strict subset of the standard shape,
	// so this grammar is tried first.
	authorityPattern = regexp.MustCompile(
		`^/akn/fi/doc/authority-regulation/([^/]+)/(\d+)/([^/]+)/([^/]+)$`)

	standardPattern = regexp.MustCompile(
		`^/akn/fi/(act|judgment|doc)/([^/]+)/(\d+)/([^/]+)/([^/]+)$`)
)

// ParseURI resolves an akn URI to document coordinates.
// It accepts either an absolute URL (scheme, host and the API root are
// stripped) or the bare path portion. Percent-encoded segments are decoded.
func ParseURI(uri string) (Coordinates, error) {
	path := uri
	if strings.HasPrefix(uri, "http") {
		u, err := url.Parse(uri)
		if err != nil {
			return Coordinates{}, fmt.Errorf("%w: %s", ErrUnparseableURI, uri)
		}
		path = u.Path
		if idx := strings.Index(path, APIRoot); idx >= 0 {
			path = path[idx+len(APIRoot):]
		}
	} else if decoded, err := url.PathUnescape(uri); err == nil {
		path = decoded
	}

	if m := authorityPattern.FindStringSubmatch(path); m != nil {
		return Coordinates{
			Category:       CategoryDoc,
			DocumentType:   DocTypeAuthorityRegulation,
			Authority:      m[1],
			Year:           m[2],
			Number:         m[3],
			LangAndVersion: m[4],
		}, nil
	}

	if m := standardPattern.FindStringSubmatch(path); m != nil {
		return Coordinates{
			Category:       m[1],
			DocumentType:   m[2],
			Year:           m[3],
			Number:         m[4],
			LangAndVersion: m[5],
		}, nil
	}

	return Coordinates{}, fmt.Errorf("%w: %s", ErrUnparseableURI, uri)
}

// APIPath reconstructs the document's API path from its coordinates.
// The authority segment is included only when present.
func (c Coordinates) APIPath() string {
	if c.Authority != "" {
		return fmt.Sprintf("/akn/fi/%s/%s/%s/%s/%s/%s",
			c.Category, c.DocumentType, c.Authority, c.Year, c.Number, c.LangAndVersion)
	}
	return fmt.Sprintf("/akn/fi/%s/%s/%s/%s/%s",
		c.Category, c.DocumentType, c.Year, c.Number, c.LangAndVersion)
}

// StoragePath returns the relative directory path a document is stored
// under. Every coordinate field appears as a literal segment, so two
// distinct coordinate values never collapse to the same path.
func (c Coordinates) StoragePath() string {
	segments := []string{c.Category, c.DocumentType}
	if c.Authority != "" {
		segments = append(segments, c.Authority)
	}
	segments = append(segments, c.Year, c.Number, c.LangAndVersion)
	return filepath.Join(segments...)
}

// ListPath returns the listing endpoint path for a (category, documentType)
// pair. Document type alone determines the path; authority-regulation is not
// special-cased here.
func ListPath(category, documentType string) string {
	return fmt.Sprintf("/akn/fi/%s/%s/list", category, documentType)
}
