package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_FirstHeading(t *testing.T) {
	c := New()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"setext", "Neues Dokument\n===", "Neues Dokument"},
		{"atx", "intro\n\n# Team *Notes*\n\n# Second", "Team Notes"},
		{"none", "## only h2\n\ntext", ""},
		{"code span", "# Use `go test`", "Use go test"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.FirstHeading(tt.src, 1))
		})
	}
}

func TestConverter_ToHTML(t *testing.T) {
	c := New()

	out, err := c.ToHTML("# Title\n\n```go\nfunc main() {}\n```\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)

	assert.Contains(t, out, `<h1 id="title">Title</h1>`)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<pre")
	assert.Contains(t, out, "main")
}

func TestConverter_RawHTMLOmittedByDefault(t *testing.T) {
	out, err := New().ToHTML("<script>alert(1)</script>\n")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")

	out, err = New(WithUnsafeHTML()).ToHTML("<div>x</div>\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<div>x</div>")
}
