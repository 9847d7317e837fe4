package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nexbyte/hackmd/internal/dao"
	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/pkg/markdown"
	"github.com/nexbyte/hackmd/pkg/notemeta"
	"github.com/nexbyte/hackmd/pkg/oauth"
	"github.com/nexbyte/hackmd/pkg/pdf"
	"github.com/nexbyte/hackmd/pkg/statestore"
	"github.com/nexbyte/hackmd/pkg/storage"
	"github.com/nexbyte/hackmd/pkg/workerpool"
	"github.com/nexbyte/hackmd/pkg/writequeue"
	"github.com/stretchr/testify/require"
)

// fakeRenderer records the last render request
type fakeRenderer struct {
	mu    sync.Mutex
	html  string
	opts  pdf.Options
	calls int
	err   error
	block chan struct{}
}

func (f *fakeRenderer) Render(ctx context.Context, html string, opts pdf.Options) ([]byte, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.html = html
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

type testEnv struct {
	cfg         *ServiceConfig
	docs        string
	noteRepo    domain.NoteRepository
	revRepo     domain.RevisionRepository
	userRepo    domain.UserRepository
	mirror      storage.Storager
	states      *statestore.Memory
	renderer    *fakeRenderer
	pool        *workerpool.Pool
	md          *markdown.Converter
	revisionSvc RevisionService
	noteSvc     NoteService
	resolver    ResolverService
	pdfSvc      PDFService
	oauthSvc    OAuthService
	actions     NoteActionService
}

type envOption func(*ServiceConfig)

// newTestEnv wires every service over a temp sqlite database and a temp docs dir.
func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	db, err := dao.NewDBEngineWithConfig(dao.DatabaseConfig{
		Type:        "sqlite",
		Path:        filepath.Join(t.TempDir(), "db.sqlite3"),
		AutoMigrate: true,
	}, nil)
	require.NoError(t, err)
	d := dao.New(db, true, nil)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	docs := t.TempDir()
	cfg := DefaultServiceConfig()
	cfg.ServerURL = "https://md.example.com"
	cfg.AllowFreeURL = true
	cfg.AllowPDFExport = true
	cfg.DocsPath = docs
	for _, o := range opts {
		o(cfg)
	}

	mirror, err := storage.NewClient(context.Background(), &storage.Config{Type: storage.LOCAL, SavePath: docs})
	require.NoError(t, err)

	wq := writequeue.New(nil, nil)
	pool := workerpool.New(&workerpool.Config{MaxWorkers: 1, QueueSize: 1}, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = pool.Shutdown(ctx)
		_ = wq.Shutdown(ctx)
	})

	env := &testEnv{
		cfg:      cfg,
		docs:     docs,
		noteRepo: dao.NewNoteRepository(d),
		revRepo:  dao.NewRevisionRepository(d),
		userRepo: dao.NewUserRepository(d),
		mirror:   mirror,
		states:   statestore.NewMemory(),
		renderer: &fakeRenderer{},
		pool:     pool,
		md:       markdown.New(),
	}

	metrics := NewMetrics(nil)
	env.revisionSvc = NewRevisionService(env.revRepo, nil)
	env.noteSvc = NewNoteService(env.noteRepo, env.revisionSvc, mirror, wq, notemeta.NewParser(env.md), metrics, nil, cfg)
	env.resolver = NewResolverService(env.noteRepo, env.noteSvc, nil, cfg)
	env.pdfSvc = NewPDFService(env.renderer, pool, env.md, nil, metrics, nil, &cfg.PDF)
	env.oauthSvc = NewOAuthService(
		oauth.NewGitHub(oauth.GitHubConfig{ClientID: "client-1", ClientSecret: "secret"}, nil),
		oauth.NewGitLab(oauth.GitLabConfig{BaseURL: "https://gitlab.example.com"}, nil),
		env.states, env.userRepo, nil, cfg)
	env.actions = NewNoteActionService(env.resolver, env.noteSvc, env.revisionSvc, env.pdfSvc, env.oauthSvc, env.md, nil, cfg)
	return env
}

// newNote creates a note with content through the note service
func (e *testEnv) newNote(t *testing.T, owner string, body string) *domain.Note {
	t.Helper()
	ctx := context.Background()
	note, err := e.noteSvc.New(ctx, domain.Requester{UserID: owner})
	require.NoError(t, err)
	if body != "" {
		note, err = e.noteSvc.Save(ctx, note.ID, notemeta.WithMarker(note.Namespace, body), domain.Requester{UserID: owner})
		require.NoError(t, err)
	}
	return note
}

// headerMap flattens effect headers for assertions
func headerMap(eff *Effect) map[string]string {
	out := make(map[string]string, len(eff.Headers))
	for _, h := range eff.Headers {
		out[h.Name] = h.Value
	}
	return out
}
