package web_router

import (
	"bytes"
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/internal/service"
	"github.com/nexbyte/hackmd/pkg/timex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLRenderer_Views(t *testing.T) {
	r, err := NewHTMLRenderer(os.DirFS("../../../templates/views"))
	require.NoError(t, err)

	base := service.PageBase{URL: "https://md.example.com", AllowPDFExport: true}
	note := &domain.Note{Namespace: "abc", Content: "# <b>title</b>"}
	now := timex.Time(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))

	tests := []struct {
		view string
		data any
		want []string
	}{
		{service.ViewNote, &service.NotePage{PageBase: base, Title: "title - HackMD", Note: note},
			[]string{"title - HackMD", "&lt;b&gt;title&lt;/b&gt;"}},
		{service.ViewPublish, &service.PublishPage{PageBase: base, Title: "t - HackMD", ViewCount: 7, CreateTime: now, UpdateTime: now, Body: "<h1>t</h1>"},
			[]string{"<h1>t</h1>", "2024-05-01"}},
		{service.ViewSlide, &service.PublishPage{PageBase: base, Title: "s - HackMD", Markdown: "# s", Theme: "black"},
			[]string{"s - HackMD", "# s"}},
		{service.ViewNew, &service.NewNotePage{PageBase: base, Namespace: "abc", Note: note},
			[]string{"abc"}},
		{service.ViewError, &service.ErrorPage{PageBase: base, Title: "Not Found", Code: 404, Detail: "Not Found", Msg: "oops."},
			[]string{"404", "oops."}},
	}
	for _, tt := range tests {
		t.Run(tt.view, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, r.Render(&buf, tt.view, tt.data))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestHTMLRenderer_Errors(t *testing.T) {
	_, err := NewHTMLRenderer(fstest.MapFS{})
	assert.Error(t, err)

	r, err := NewHTMLRenderer(fstest.MapFS{
		"broken.html": {Data: []byte(`{{.Missing.Field}}`)},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.Error(t, r.Render(&buf, "unknown", nil))
	assert.Error(t, r.Render(&buf, "broken", struct{}{}))
	assert.Zero(t, buf.Len())
}
