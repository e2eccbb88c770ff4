package finlex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pageBody builds a JSON list response with n entries for the given page.
func pageBody(t *testing.T, page, n int) string {
	t.Helper()
	entries := make([]listEntry, n)
	for i := range entries {
		entries[i] = listEntry{
			AknURI: fmt.Sprintf("/akn/fi/act/statute/2024/%d-%d/fin@", page, i),
			Status: ChangeNew,
		}
	}
	data, err := json.Marshal(entries)
	require.NoError(t, err)
	return string(data)
}

// pagedTransport serves pages of the given sizes, empty thereafter.
func pagedTransport(t *testing.T, sizes ...int) *stubTransport {
	t.Helper()
	return &stubTransport{
		handler: func(path string, params url.Values, accept string) (*Response, error) {
			var page int
			_, err := fmt.Sscanf(params.Get("page"), "%d", &page)
			require.NoError(t, err)
			if page > len(sizes) {
				return okResponse("[]")
			}
			return okResponse(pageBody(t, page, sizes[page-1]))
		},
	}
}

func collect(l *Lister, cfg ListConfig) []ListItem {
	var items []ListItem
	for item := range l.List(context.Background(), cfg) {
		items = append(items, item)
	}
	return items
}

func TestListerPagination(t *testing.T) {
	// Pages of 10, 10 and 3: exactly 23 items over exactly 3 requests,
	// the short page ending pagination without a 4th request.
	transport := pagedTransport(t, 10, 10, 3)
	lister := NewLister(transport, nil)

	items := collect(lister, ListConfig{Category: "act", DocumentType: "statute"})

	assert.Len(t, items, 23)
	assert.Len(t, transport.calls, 3)
	assert.Equal(t, 1, items[0].Page)
	assert.Equal(t, 3, items[22].Page)
}

func TestListerEmptyFirstPage(t *testing.T) {
	transport := pagedTransport(t)
	lister := NewLister(transport, nil)

	items := collect(lister, ListConfig{Category: "act", DocumentType: "statute"})

	assert.Empty(t, items)
	assert.Len(t, transport.calls, 1)
}

func TestListerFullPagesEndWithEmptyPage(t *testing.T) {
	// Two full pages need a third request to discover the end of data.
	transport := pagedTransport(t, 10, 10)
	lister := NewLister(transport, nil)

	items := collect(lister, ListConfig{Category: "act", DocumentType: "statute"})

	assert.Len(t, items, 20)
	assert.Len(t, transport.calls, 3)
}

func TestListerRequestParams(t *testing.T) {
	transport := pagedTransport(t, 2)
	lister := NewLister(transport, nil)

	collect(lister, ListConfig{
		Category:       "judgment",
		DocumentType:   "kko",
		LangAndVersion: "swe@",
		StartYear:      2020,
		EndYear:        2024,
		PageSize:       5,
	})

	require.Len(t, transport.calls, 1)
	call := transport.calls[0]
	assert.Equal(t, "/akn/fi/judgment/kko/list", call.Path)
	assert.Equal(t, AcceptJSON, call.Accept)
	assert.Equal(t, "json", call.Params.Get("format"))
	assert.Equal(t, "1", call.Params.Get("page"))
	assert.Equal(t, "5", call.Params.Get("limit"))
	assert.Equal(t, "swe@", call.Params.Get("langAndVersion"))
	assert.Equal(t, "2020", call.Params.Get("startYear"))
	assert.Equal(t, "2024", call.Params.Get("endYear"))
}

func TestListerClampsPageSize(t *testing.T) {
	transport := pagedTransport(t, 3)
	lister := NewLister(transport, nil)

	collect(lister, ListConfig{Category: "act", DocumentType: "statute", PageSize: 500})

	require.Len(t, transport.calls, 1)
	assert.Equal(t, "10", transport.calls[0].Params.Get("limit"))
}

func TestListerOmitsUnsetYears(t *testing.T) {
	transport := pagedTransport(t, 1)
	lister := NewLister(transport, nil)

	collect(lister, ListConfig{Category: "act", DocumentType: "statute"})

	require.Len(t, transport.calls, 1)
	assert.False(t, transport.calls[0].Params.Has("startYear"))
	assert.False(t, transport.calls[0].Params.Has("endYear"))
}

func TestListerMaxPages(t *testing.T) {
	transport := pagedTransport(t, 10, 10, 10, 10)
	lister := NewLister(transport, nil)

	items := collect(lister, ListConfig{
		Category: "act", DocumentType: "statute", MaxPages: 2,
	})

	assert.Len(t, items, 20)
	assert.Len(t, transport.calls, 2)
}

func TestListerStartPage(t *testing.T) {
	transport := pagedTransport(t, 10, 10, 3)
	lister := NewLister(transport, nil)

	items := collect(lister, ListConfig{
		Category: "act", DocumentType: "statute", StartPage: 3,
	})

	assert.Len(t, items, 3)
	require.Len(t, transport.calls, 1)
	assert.Equal(t, "3", transport.calls[0].Params.Get("page"))
}

func TestListerStopsOnRequestFailure(t *testing.T) {
	// Page 2 fails: items from page 1 stand, sequence truncates silently.
	transport := &stubTransport{}
	transport.handler = func(path string, params url.Values, accept string) (*Response, error) {
		if params.Get("page") == "1" {
			return okResponse(pageBody(t, 1, 10))
		}
		return statusResponse(500)
	}
	lister := NewLister(transport, nil)

	items := collect(lister, ListConfig{Category: "act", DocumentType: "statute"})

	assert.Len(t, items, 10)
	assert.Len(t, transport.calls, 2)
}

func TestListerStopsOnMalformedBody(t *testing.T) {
	transport := &stubTransport{}
	transport.handler = func(path string, params url.Values, accept string) (*Response, error) {
		if params.Get("page") == "1" {
			return okResponse(pageBody(t, 1, 10))
		}
		return okResponse("<html>not json</html>")
	}
	lister := NewLister(transport, nil)

	items := collect(lister, ListConfig{Category: "act", DocumentType: "statute"})

	assert.Len(t, items, 10)
	assert.Len(t, transport.calls, 2)
}

func TestListerLazy(t *testing.T) {
	// No page is requested until the consumer pulls, and abandoning the
	// sequence early fetches no further pages.
	transport := pagedTransport(t, 10, 10, 10)
	lister := NewLister(transport, nil)

	seq := lister.List(context.Background(), ListConfig{
		Category: "act", DocumentType: "statute",
	})
	assert.Empty(t, transport.calls)

	for range seq {
		break
	}
	assert.Len(t, transport.calls, 1)
}
