package finlex

import (
	"bytes"
	"encoding/xml"
	"io"
	"sort"
	"strings"
)

// mediaPrefix marks document-relative media references. Absolute URLs and
// other hrefs are not media assets and are ignored.
const mediaPrefix = "media/"

// ExtractMediaRefs collects media references from an Akoma Ntoso document:
// the src of every img element, the href of every element nested inside an
// attachment container, and the href of every ref element. Only values with
// the media/ prefix count. The result is deduplicated and sorted; malformed
// markup yields nil rather than an error.
func ExtractMediaRefs(body []byte) []string {
	seen := make(map[string]struct{})
	attachmentDepth := 0

	decoder := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Matches the listing tolerance: a document we cannot parse
			// simply has no media.
			return nil
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "img":
				collectAttr(seen, el, "src")
			case "ref":
				collectAttr(seen, el, "href")
			default:
				if attachmentDepth > 0 {
					collectAttr(seen, el, "href")
				}
			}
			if el.Name.Local == "attachment" {
				attachmentDepth++
			}
		case xml.EndElement:
			if el.Name.Local == "attachment" {
				attachmentDepth--
			}
		}
	}

	if len(seen) == 0 {
		return nil
	}
	refs := make([]string, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

func collectAttr(seen map[string]struct{}, el xml.StartElement, name string) {
	for _, attr := range el.Attr {
		if attr.Name.Local == name && strings.HasPrefix(attr.Value, mediaPrefix) {
			seen[attr.Value] = struct{}{}
		}
	}
}
