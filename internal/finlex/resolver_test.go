package finlex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want Coordinates
	}{
		{
			name: "standard act path",
			uri:  "/akn/fi/act/statute/2024/123/fin@",
			want: Coordinates{
				Category:       "act",
				DocumentType:   "statute",
				Year:           "2024",
				Number:         "123",
				LangAndVersion: "fin@",
			},
		},
		{
			name: "authority regulation path",
			uri:  "/akn/fi/doc/authority-regulation/metsahallitus/1996/32082/fin@",
			want: Coordinates{
				Category:       "doc",
				DocumentType:   "authority-regulation",
				Authority:      "metsahallitus",
				Year:           "1996",
				Number:         "32082",
				LangAndVersion: "fin@",
			},
		},
		{
			name: "judgment path",
			uri:  "/akn/fi/judgment/kko/2023/45/fin@",
			want: Coordinates{
				Category:       "judgment",
				DocumentType:   "kko",
				Year:           "2023",
				Number:         "45",
				LangAndVersion: "fin@",
			},
		},
		{
			name: "absolute URL with API root",
			uri:  "https://opendata.finlex.fi/finlex/avoindata/v1/akn/fi/act/statute/2024/123/fin@",
			want: Coordinates{
				Category:       "act",
				DocumentType:   "statute",
				Year:           "2024",
				Number:         "123",
				LangAndVersion: "fin@",
			},
		},
		{
			name: "percent-encoded lang segment decodes",
			uri:  "/akn/fi/act/statute/2024/123/fin%40",
			want: Coordinates{
				Category:       "act",
				DocumentType:   "statute",
				Year:           "2024",
				Number:         "123",
				LangAndVersion: "fin@",
			},
		},
		{
			name: "percent-encoded URL path decodes",
			uri:  "https://opendata.finlex.fi/finlex/avoindata/v1/akn/fi/act/statute/2024/123/fin%40",
			want: Coordinates{
				Category:       "act",
				DocumentType:   "statute",
				Year:           "2024",
				Number:         "123",
				LangAndVersion: "fin@",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseURI(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseURIUnparseable(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{name: "empty string", uri: ""},
		{name: "missing segment", uri: "/akn/fi/act/statute/2024/123"},
		{name: "unknown category", uri: "/akn/fi/regulation/statute/2024/123/fin@"},
		{name: "non-numeric year", uri: "/akn/fi/act/statute/twenty/123/fin@"},
		{name: "trailing segment", uri: "/akn/fi/act/statute/2024/123/fin@/extra"},
		{name: "unrelated path", uri: "/some/other/path"},
		{name: "unrelated url", uri: "https://example.com/nothing/here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURI(tt.uri)
			assert.ErrorIs(t, err, ErrUnparseableURI)
		})
	}
}

func TestAPIPathRoundTrip(t *testing.T) {
	coords := []Coordinates{
		{Category: "act", DocumentType: "statute", Year: "2024", Number: "123", LangAndVersion: "fin@"},
		{Category: "act", DocumentType: "statute-consolidated", Year: "1999", Number: "7b", LangAndVersion: "swe@2020-01-01"},
		{Category: "judgment", DocumentType: "kho", Year: "2021", Number: "88", LangAndVersion: "fin@"},
		{Category: "doc", DocumentType: "treaty", Year: "2010", Number: "5", LangAndVersion: "fin@"},
		{Category: "doc", DocumentType: "authority-regulation", Authority: "traficom", Year: "2022", Number: "104", LangAndVersion: "fin@"},
	}

	for _, c := range coords {
		got, err := ParseURI(c.APIPath())
		require.NoError(t, err, "api path %s", c.APIPath())
		assert.Equal(t, c, got)
	}
}

func TestStoragePathUniqueness(t *testing.T) {
	coords := []Coordinates{
		{Category: "act", DocumentType: "statute", Year: "2024", Number: "123", LangAndVersion: "fin@"},
		{Category: "act", DocumentType: "statute", Year: "2024", Number: "123", LangAndVersion: "swe@"},
		{Category: "act", DocumentType: "statute", Year: "2023", Number: "123", LangAndVersion: "fin@"},
		{Category: "doc", DocumentType: "statute", Year: "2024", Number: "123", LangAndVersion: "fin@"},
		{Category: "doc", DocumentType: "authority-regulation", Authority: "traficom", Year: "2024", Number: "123", LangAndVersion: "fin@"},
		{Category: "doc", DocumentType: "authority-regulation", Authority: "fimea", Year: "2024", Number: "123", LangAndVersion: "fin@"},
	}

	seen := make(map[string]Coordinates)
	for _, c := range coords {
		path := c.StoragePath()
		prev, dup := seen[path]
		require.False(t, dup, "coordinates %+v and %+v collapse to %s", prev, c, path)
		seen[path] = c
	}
}

func TestStoragePathSegments(t *testing.T) {
	c := Coordinates{
		Category: "doc", DocumentType: "authority-regulation",
		Authority: "metsahallitus", Year: "1996", Number: "32082", LangAndVersion: "fin@",
	}
	assert.Equal(t,
		"doc/authority-regulation/metsahallitus/1996/32082/fin@",
		c.StoragePath())

	c = Coordinates{
		Category: "act", DocumentType: "statute",
		Year: "2024", Number: "123", LangAndVersion: "fin@",
	}
	assert.Equal(t, "act/statute/2024/123/fin@", c.StoragePath())
}

func TestListPath(t *testing.T) {
	assert.Equal(t, "/akn/fi/act/statute/list", ListPath("act", "statute"))
	// Authority-regulation is not special-cased: type alone determines the path.
	assert.Equal(t, "/akn/fi/doc/authority-regulation/list",
		ListPath("doc", "authority-regulation"))
}
