package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/internal/dto"
	"github.com/nexbyte/hackmd/pkg/code"
	"github.com/nexbyte/hackmd/pkg/pdf"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dispatch(env *testEnv, note *domain.Note, name, actionID string) *Effect {
	action, templateID := domain.ParseNoteAction(name)
	return env.actions.Dispatch(context.Background(), ActionRequest{
		Action:     action,
		Name:       name,
		TemplateID: templateID,
		ActionID:   actionID,
		NoteToken:  note.Namespace,
		Note:       note,
	})
}

func TestDispatch_Download(t *testing.T) {
	env := newTestEnv(t)
	note := env.newNote(t, "", "# Über uns & mehr")

	eff := dispatch(env, note, "download", "")
	require.Equal(t, EffectBytes, eff.Kind)
	assert.Equal(t, note.Content, string(eff.Body))

	want := []Header{
		{"Access-Control-Allow-Origin", "*"},
		{"Access-Control-Allow-Headers", "Range"},
		{"Access-Control-Expose-Headers", "Cache-Control, Content-Encoding, Content-Range"},
		{"Content-Type", "text/markdown; charset=UTF-8"},
		{"Cache-Control", "private"},
		{"Content-disposition", "attachment; filename=%C3%9Cber%20uns%20%26%20mehr.md"},
		{"X-Robots-Tag", "noindex, nofollow"},
	}
	assert.Equal(t, want, eff.Headers)
}

func TestDispatch_DownloadUntitled(t *testing.T) {
	env := newTestEnv(t)
	note := env.newNote(t, "", "no heading here")

	h := headerMap(dispatch(env, note, "download", ""))
	assert.Equal(t, "attachment; filename=Untitled.md", h["Content-disposition"])
}

func TestDispatch_Info(t *testing.T) {
	env := newTestEnv(t)
	note := env.newNote(t, "", "---\ntitle: Meta Title\n---\n# Heading\n\nbody text")

	eff := dispatch(env, note, "info", "")
	require.Equal(t, EffectJSON, eff.Kind)
	info := eff.Data.(*dto.NoteInfoDTO)
	assert.Equal(t, "Meta Title", info.Title)
	require.NotNil(t, info.Description)
	assert.Equal(t, "# Heading  body text", *info.Description)

	h := headerMap(eff)
	assert.Equal(t, "*", h["Access-Control-Allow-Origin"])
	assert.Equal(t, "private", h["Cache-Control"])
	assert.Equal(t, "noindex, nofollow", h["X-Robots-Tag"])
}

func TestDispatch_InfoEmptyMarkdown(t *testing.T) {
	env := newTestEnv(t)
	note := &domain.Note{ID: "x", Content: "<!-- hackmd:abc -->\n\n", CreatedAt: time.Now()}

	info := dispatch(env, note, "info", "").Data.(*dto.NoteInfoDTO)
	assert.Equal(t, "Untitled", info.Title)
	assert.Nil(t, info.Description)
}

func TestDispatch_Slide(t *testing.T) {
	env := newTestEnv(t)
	note := env.newNote(t, "", "")

	eff := dispatch(env, note, "slide", "")
	assert.Equal(t, EffectRedirect, eff.Kind)
	assert.Equal(t, "https://md.example.com/p/"+note.ShortID, eff.Location)

	note.Alias = "deck"
	assert.Equal(t, "https://md.example.com/p/deck", dispatch(env, note, "slide", "").Location)
}

func TestDispatch_Unknown(t *testing.T) {
	env := newTestEnv(t)
	note := env.newNote(t, "", "")

	eff := dispatch(env, note, "whatever", "")
	assert.Equal(t, EffectRedirect, eff.Kind)
	assert.Equal(t, "https://md.example.com/"+url.PathEscape(note.Namespace), eff.Location)
}

func TestDispatch_FreeURLCreatesNote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	req := ActionRequest{Action: domain.ActionInfo, Name: "info", NoteToken: "brand-new", Requester: domain.Anonymous}

	eff := env.actions.Dispatch(ctx, req)
	require.Equal(t, EffectRedirect, eff.Kind)
	assert.Equal(t, "https://md.example.com/brand-new?both", eff.Location)

	note, err := env.resolver.Find(ctx, "brand-new")
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, "brand-new", note.Alias)

	// 已存在的笔记正常执行操作
	eff = env.actions.Dispatch(ctx, req)
	assert.Equal(t, EffectJSON, eff.Kind)

	env.cfg.AllowFreeURL = false
	req.NoteToken = "other-new"
	eff = env.actions.Dispatch(ctx, req)
	assert.Equal(t, EffectError, eff.Kind)
	assert.Equal(t, 404, eff.Status)
}

func TestDispatch_PublishRendersNewWithoutFilePath(t *testing.T) {
	env := newTestEnv(t)
	note := env.newNote(t, "", "# Draft")

	for _, name := range []string{"publish", "pretty"} {
		eff := dispatch(env, note, name, "")
		require.Equal(t, EffectRender, eff.Kind, name)
		assert.Equal(t, ViewNew, eff.View)
		page := eff.Data.(*NewNotePage)
		assert.Equal(t, note.Namespace, page.Namespace)
	}
}

func TestDispatch_PublishRedirectsWhenMirrored(t *testing.T) {
	env := newTestEnv(t)
	note := env.newNote(t, "", "# Mirrored")
	note, err := env.noteSvc.SetFilePath(context.Background(), note, "mirrored.md")
	require.NoError(t, err)

	eff := dispatch(env, note, "publish", "")
	require.Equal(t, EffectRedirect, eff.Kind)
	assert.Equal(t, "https://md.example.com/s/"+note.ShortID, eff.Location)
}

func TestDispatch_PublishMirrorFailureRendersNew(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	note := env.newNote(t, "", "# Offline")
	note, err := env.noteSvc.SetFilePath(ctx, note, "offline.md")
	require.NoError(t, err)

	metrics := NewMetrics(nil)
	noteSvc := newPublishNoteService(t, env, env.revisionSvc, failingMirror{env.mirror}, metrics)
	actions := NewNoteActionService(env.resolver, noteSvc, env.revisionSvc, env.pdfSvc, env.oauthSvc, env.md, nil, env.cfg)

	eff := actions.Dispatch(ctx, ActionRequest{Action: domain.ActionPublish, Name: "publish", NoteToken: note.Namespace, Note: note})
	require.Equal(t, EffectRender, eff.Kind)
	assert.Equal(t, ViewNew, eff.View)
	assert.Equal(t, note.Namespace, eff.Data.(*NewNotePage).Namespace)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MirrorWriteFailures))
}

func TestDispatch_PDFDisabled(t *testing.T) {
	env := newTestEnv(t, func(c *ServiceConfig) { c.AllowPDFExport = false })
	note := env.newNote(t, "", "# Report")

	eff := dispatch(env, note, "pdf-NextEvent", "")
	require.Equal(t, EffectError, eff.Kind)
	assert.Equal(t, 403, eff.Status)
	assert.True(t, errors.Is(eff.Err, code.ErrorPDFExportDisabled))
	assert.Zero(t, env.renderer.calls)
}

func TestDispatch_PDF(t *testing.T) {
	env := newTestEnv(t)
	note := env.newNote(t, "", "# Report\n\n```go\nfmt.Println(1)\n```\n")

	eff := dispatch(env, note, "pdf-NextEvent", "")
	require.Equal(t, EffectBytes, eff.Kind)
	assert.Equal(t, "%PDF-1.4 fake", string(eff.Body))

	h := headerMap(eff)
	assert.Equal(t, "attachment; filename=Report.pdf", h["Content-Disposition"])
	assert.Equal(t, "application/pdf", h["Content-Type"])
	assert.Equal(t, "private", h["Cache-Control"])

	assert.Equal(t, pdf.Options{DPI: 600, MarginTopCM: 4.75, MarginBottomCM: 1.5}, env.renderer.opts)
	assert.Contains(t, env.renderer.html, `<div id="pageContent">`)
	assert.Contains(t, env.renderer.html, "Report")

	dispatch(env, note, "pdf-nexbyte", "")
	assert.Equal(t, 3.0, env.renderer.opts.MarginTopCM)
	dispatch(env, note, "pdf", "")
	assert.Equal(t, 0.0, env.renderer.opts.MarginTopCM)
	// 没有 "pdf-" 前缀时不使用模板页边距
	dispatch(env, note, "pdfNextEvent", "")
	assert.Equal(t, 0.0, env.renderer.opts.MarginTopCM)
}

func TestDispatch_Gist(t *testing.T) {
	env := newTestEnv(t)
	note := env.newNote(t, "", "")

	eff := dispatch(env, note, "gist", "")
	require.Equal(t, EffectRedirect, eff.Kind)
	u, err := url.Parse(eff.Location)
	require.NoError(t, err)
	assert.Equal(t, "github.com", u.Host)
	assert.Equal(t, "/login/oauth/authorize", u.Path)

	q := u.Query()
	assert.Equal(t, "client-1", q.Get("client_id"))
	assert.Equal(t, "gist", q.Get("scope"))
	assert.Equal(t, "https://md.example.com/auth/github/callback/"+url.PathEscape(note.Namespace)+"/gist", q.Get("redirect_uri"))
	require.NotEmpty(t, q.Get("state"))
	assert.Equal(t, 1, env.states.Len())
}

func TestDispatch_Revision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	note := env.newNote(t, "", "# First")

	_, _, err := env.noteSvc.Publish(ctx, note.ID, domain.Anonymous)
	require.NoError(t, err)

	list := dispatch(env, note, "revision", "")
	require.Equal(t, EffectJSON, list.Kind)
	revs := list.Data.(*dto.RevisionListDTO).Revision
	require.Len(t, revs, 1)
	assert.Equal(t, "noindex, nofollow", headerMap(list)["X-Robots-Tag"])

	content := dispatch(env, note, "revision", strconv.FormatInt(revs[0].Time, 10))
	require.Equal(t, EffectBytes, content.Kind)
	assert.Equal(t, "text/plain; charset=utf-8", content.ContentType)
	assert.Equal(t, note.Content, string(content.Body))
	assert.Equal(t, "*", headerMap(content)["Access-Control-Allow-Origin"])

	before := dispatch(env, note, "revision", strconv.FormatInt(revs[0].Time-1, 10))
	assert.Equal(t, 404, before.Status)

	for _, bad := range []string{"abc", "12abc", "1.5"} {
		eff := dispatch(env, note, "revision", bad)
		assert.Equal(t, EffectError, eff.Kind, bad)
		assert.Equal(t, 404, eff.Status, bad)
	}
}

func TestShowNote_CanonicalRedirect(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	note := env.newNote(t, "", "# Page")

	eff := env.actions.ShowNote(ctx, note.ShortID, domain.Anonymous)
	require.Equal(t, EffectRedirect, eff.Kind)
	assert.Equal(t, "https://md.example.com/"+url.PathEscape(note.Namespace), eff.Location)

	eff = env.actions.ShowNote(ctx, note.Namespace, domain.Anonymous)
	require.Equal(t, EffectRender, eff.Kind)
	assert.Equal(t, ViewNote, eff.View)
	assert.Equal(t, "Page - HackMD", eff.Data.(*NotePage).Title)
	assert.Equal(t, []Header{{"Cache-Control", "private"}, {"X-Robots-Tag", "noindex, nofollow"}}, eff.Headers)
}

func TestShowNote_FreeURL(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	eff := env.actions.ShowNote(ctx, "retro", domain.Anonymous)
	require.Equal(t, EffectRender, eff.Kind)
	assert.Equal(t, "retro", eff.Data.(*NotePage).Note.Alias)

	env.cfg.AllowFreeURL = false
	eff = env.actions.ShowNote(ctx, "planning", domain.Anonymous)
	assert.Equal(t, EffectError, eff.Kind)
	assert.Equal(t, 404, eff.Status)
}

func TestShowPublished(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	note := env.newNote(t, "", "---\nrobots: noindex\nGA: UA-1\nslideOptions:\n  theme: moon\n---\n# Talk\n\nhello")

	eff := env.actions.ShowPublished(ctx, note.Namespace, domain.SurfacePublish, domain.Anonymous)
	require.Equal(t, EffectRedirect, eff.Kind)
	assert.Equal(t, "https://md.example.com/s/"+note.ShortID, eff.Location)

	eff = env.actions.ShowPublished(ctx, note.ShortID, domain.SurfacePublish, domain.Anonymous)
	require.Equal(t, EffectRender, eff.Kind)
	assert.Equal(t, ViewPublish, eff.View)
	assert.Equal(t, []Header{{"Cache-Control", "private"}}, eff.Headers)
	page := eff.Data.(*PublishPage)
	assert.Equal(t, "Talk - HackMD", page.Title)
	assert.Equal(t, "noindex", page.Robots)
	assert.Equal(t, "UA-1", page.GA)
	assert.EqualValues(t, 1, page.ViewCount)
	assert.Contains(t, string(page.Body), "<h1")

	eff = env.actions.ShowPublished(ctx, note.ShortID, domain.SurfaceSlide, domain.Anonymous)
	require.Equal(t, EffectRender, eff.Kind)
	assert.Equal(t, ViewSlide, eff.View)
	slide := eff.Data.(*PublishPage)
	assert.Equal(t, "moon", slide.Theme)
	assert.Equal(t, "# Talk\n\nhello", slide.Markdown)
	assert.EqualValues(t, 2, slide.ViewCount)
}

func TestPublishedAction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	note := env.newNote(t, "", "")

	eff := env.actions.PublishedAction(ctx, note.ShortID, domain.SurfacePublish, "edit", domain.Anonymous)
	assert.Equal(t, "https://md.example.com/"+url.PathEscape(note.Namespace), eff.Location)

	eff = env.actions.PublishedAction(ctx, note.ShortID, domain.SurfaceSlide, "other", domain.Anonymous)
	assert.Equal(t, "https://md.example.com/p/"+note.ShortID, eff.Location)

	eff = env.actions.PublishedAction(ctx, note.ShortID, domain.SurfacePublish, "other", domain.Anonymous)
	assert.Equal(t, "https://md.example.com/s/"+note.ShortID, eff.Location)
}

func TestNewNote(t *testing.T) {
	env := newTestEnv(t)

	eff := env.actions.NewNote(context.Background(), domain.Anonymous)
	require.Equal(t, EffectRedirect, eff.Kind)
	assert.True(t, strings.HasSuffix(eff.Location, "?both"))

	env.cfg.AllowAnonymous = false
	eff = env.actions.NewNote(context.Background(), domain.Anonymous)
	assert.Equal(t, 403, eff.Status)
}

func TestSaveNotePath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	note := env.newNote(t, "", "# Linked")

	eff := env.actions.SaveNotePath(ctx, &dto.NotePathRequest{FilePath: "linked.md", Namespace: note.Namespace}, domain.Anonymous)
	require.Equal(t, EffectRedirect, eff.Kind)
	assert.Equal(t, "https://md.example.com/"+url.PathEscape(note.Namespace), eff.Location)

	ok, err := env.mirror.Exists(ctx, "linked.md")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSaveContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	note := env.newNote(t, "", "# Before")

	out, err := env.actions.SaveContent(ctx, note.Namespace, "# After\n\n###### tags: `x`\n", domain.Anonymous)
	require.NoError(t, err)
	assert.Equal(t, note.Namespace, out.ID)
	assert.Equal(t, "After", out.Title)
	assert.Equal(t, []string{"x"}, out.Tags)

	_, err = env.actions.SaveContent(ctx, "missing-note", "x", domain.Anonymous)
	assert.True(t, errors.Is(err, code.ErrorNoteNotFound))
}

func TestSaveContent_Protected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	note := env.newNote(t, "owner", "# Locked")
	note.Permission = domain.PermissionProtected

	stub := &permissionRepo{NoteRepository: env.noteRepo, notes: map[domain.Permission]*domain.Note{domain.PermissionProtected: note}}
	resolver := NewResolverService(stub, env.noteSvc, nil, env.cfg)
	actions := NewNoteActionService(resolver, env.noteSvc, env.revisionSvc, env.pdfSvc, env.oauthSvc, env.md, nil, env.cfg)

	_, err := actions.SaveContent(ctx, note.ID, "# Changed", domain.Requester{UserID: "other"})
	assert.True(t, errors.Is(err, code.ErrorNoteForbidden))

	out, err := actions.SaveContent(ctx, note.ID, "# Changed", domain.Requester{UserID: "owner"})
	require.NoError(t, err)
	assert.Equal(t, "Changed", out.Title)
}
