package service

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/pkg/code"
	"github.com/nexbyte/hackmd/pkg/markdown"
	"github.com/nexbyte/hackmd/pkg/workerpool"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFService_Templates(t *testing.T) {
	templates := fstest.MapFS{
		"pdf.css":                   {Data: []byte("body{margin:0}")},
		"pdf-NextEvent.css":         {Data: []byte("h1{color:red}")},
		"pdf-NextEvent_header.html": {Data: []byte("<div>NextEvent</div>")},
	}
	renderer := &fakeRenderer{}
	pool := workerpool.New(nil, nil)
	t.Cleanup(func() { _ = pool.Shutdown(context.Background()) })

	cfg := DefaultServiceConfig().PDF
	svc := NewPDFService(renderer, pool, markdown.New(), templates, nil, nil, &cfg)
	note := &domain.Note{ID: "n1", Title: "Agenda", Content: "# Agenda\n\n- item"}

	_, err := svc.Export(context.Background(), note, "pdf-NextEvent", "NextEvent")
	require.NoError(t, err)
	assert.Contains(t, renderer.html, "body{margin:0}")
	assert.Contains(t, renderer.html, "h1{color:red}")
	assert.Contains(t, renderer.html, "<li>item</li>")
	assert.Equal(t, "<div>NextEvent</div>", renderer.opts.HeaderTemplate)
	assert.Equal(t, 4.75, renderer.opts.MarginTopCM)

	// 缺少的模板文件直接跳过
	_, err = svc.Export(context.Background(), note, "pdf-other", "other")
	require.NoError(t, err)
	assert.Contains(t, renderer.html, "body{margin:0}")
	assert.NotContains(t, renderer.html, "h1{color:red}")
	assert.Empty(t, renderer.opts.HeaderTemplate)
	assert.Zero(t, renderer.opts.MarginTopCM)

	// 名称中的路径分隔符不会读取目录外文件
	_, err = svc.Export(context.Background(), note, "../pdf", "")
	require.NoError(t, err)
	assert.Empty(t, renderer.opts.HeaderTemplate)
}

func TestPDFService_RenderFailure(t *testing.T) {
	renderer := &fakeRenderer{err: errors.New("chrome crashed")}
	pool := workerpool.New(nil, nil)
	t.Cleanup(func() { _ = pool.Shutdown(context.Background()) })

	svc := NewPDFService(renderer, pool, markdown.New(), nil, nil, nil, nil)
	_, err := svc.Export(context.Background(), &domain.Note{ID: "n1"}, "pdf", "")
	assert.True(t, errors.Is(err, code.ErrorPDFRenderFailed))
}

func TestPDFService_Busy(t *testing.T) {
	renderer := &fakeRenderer{block: make(chan struct{})}
	pool := workerpool.New(&workerpool.Config{MaxWorkers: 1, QueueSize: 1}, nil)
	t.Cleanup(func() {
		close(renderer.block)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = pool.Shutdown(ctx)
	})

	svc := NewPDFService(renderer, pool, markdown.New(), nil, nil, nil, nil)
	note := &domain.Note{ID: "n1", Content: "x"}

	// 占满工作者与队列
	for i := 0; i < 2; i++ {
		go func() { _, _ = svc.Export(context.Background(), note, "pdf", "") }()
	}
	require.Eventually(t, func() bool {
		return pool.ActiveCount() == 1 && pool.QueuedCount() == 1
	}, 2*time.Second, 5*time.Millisecond)

	_, err := svc.Export(context.Background(), note, "pdf", "")
	assert.True(t, errors.Is(err, code.ErrorPDFRenderBusy))
	assert.Equal(t, 503, code.ErrorPDFRenderBusy.StatusCode())
}
