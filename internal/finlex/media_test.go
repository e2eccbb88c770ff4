package finlex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMediaRefs(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "img src",
			body: `<akomaNtoso><body><img src="media/figure1.gif"/></body></akomaNtoso>`,
			want: []string{"media/figure1.gif"},
		},
		{
			name: "ref href",
			body: `<akomaNtoso><ref href="media/annex.pdf">annex</ref></akomaNtoso>`,
			want: []string{"media/annex.pdf"},
		},
		{
			name: "href nested under attachment",
			body: `<akomaNtoso><attachments><attachment>
				<documentRef href="media/attachment1.xml"/>
			</attachment></attachments></akomaNtoso>`,
			want: []string{"media/attachment1.xml"},
		},
		{
			name: "href outside attachment on a generic element is ignored",
			body: `<akomaNtoso><documentRef href="media/loose.xml"/></akomaNtoso>`,
			want: nil,
		},
		{
			name: "non-media hrefs excluded",
			body: `<akomaNtoso>
				<img src="https://example.com/media/figure.gif"/>
				<ref href="/akn/fi/act/statute/2024/1/fin@">statute</ref>
				<ref href="assets/other.png">other</ref>
			</akomaNtoso>`,
			want: nil,
		},
		{
			name: "duplicates collapse",
			body: `<akomaNtoso>
				<img src="media/figure1.gif"/>
				<img src="media/figure1.gif"/>
				<ref href="media/figure1.gif">fig</ref>
			</akomaNtoso>`,
			want: []string{"media/figure1.gif"},
		},
		{
			name: "all three shapes together",
			body: `<akomaNtoso xmlns="http://docs.oasis-open.org/legaldocml/ns/akn/3.0">
				<img src="media/a.gif"/>
				<attachments><attachment><documentRef href="media/b.xml"/></attachment></attachments>
				<ref href="media/c.pdf">c</ref>
			</akomaNtoso>`,
			want: []string{"media/a.gif", "media/b.xml", "media/c.pdf"},
		},
		{
			name: "malformed markup yields empty",
			body: `<akomaNtoso><img src="media/figure1.gif"><unclosed`,
			want: nil,
		},
		{
			name: "empty input",
			body: "",
			want: nil,
		},
		{
			name: "no references",
			body: `<akomaNtoso><body>text only</body></akomaNtoso>`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMediaRefs([]byte(tt.body)))
		})
	}
}
