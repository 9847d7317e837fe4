package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/pkg/code"
	"github.com/nexbyte/hackmd/pkg/oauth"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGitHub struct {
	gistStatus int
	gotFiles   map[string]map[string]string
}

func (f *fakeGitHub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["code"] != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-1"}`))
	})
	mux.HandleFunc("/gists", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "token tok-1" || r.Header.Get("User-Agent") != "HackMD" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body struct {
			Files map[string]map[string]string `json:"files"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.gotFiles = body.Files
		w.WriteHeader(f.gistStatus)
		_, _ = w.Write([]byte(`{"html_url":"https://gist.example.com/abc"}`))
	})
	mux.HandleFunc("/api/v3/projects", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") != "gl-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[{"id":1,"name":"docs"}]`))
	})
	return mux
}

func newOAuthEnv(t *testing.T, gistStatus int) (*testEnv, *fakeGitHub, OAuthService) {
	t.Helper()
	env := newTestEnv(t)
	fake := &fakeGitHub{gistStatus: gistStatus}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client := oauth.NewHTTPClient(5 * time.Second)
	svc := NewOAuthService(
		oauth.NewGitHub(oauth.GitHubConfig{ClientID: "id", ClientSecret: "secret", WebURL: srv.URL, APIURL: srv.URL}, client),
		oauth.NewGitLab(oauth.GitLabConfig{BaseURL: srv.URL}, client),
		env.states, env.userRepo, nil, env.cfg)
	return env, fake, svc
}

func TestOAuthService_GistCallback(t *testing.T) {
	env, fake, svc := newOAuthEnv(t, http.StatusCreated)
	ctx := context.Background()
	note := env.newNote(t, "", "# a/b/c")

	_, err := svc.GistAuthorizeURL(ctx, note)
	require.NoError(t, err)
	require.NoError(t, env.states.Put(ctx, "state-1", note.ID, time.Minute))

	loc, err := svc.GistCallback(ctx, note, "good-code", "state-1")
	require.NoError(t, err)
	assert.Equal(t, "https://gist.example.com/abc", loc)
	require.Contains(t, fake.gotFiles, "a b/c.md")
	assert.Equal(t, note.Content, fake.gotFiles["a b/c.md"]["content"])

	// state 只能使用一次
	_, err = svc.GistCallback(ctx, note, "good-code", "state-1")
	assert.True(t, errors.Is(err, code.ErrorOAuthStateInvalid))
}

func TestOAuthService_GistCallbackFailures(t *testing.T) {
	env, _, svc := newOAuthEnv(t, http.StatusUnprocessableEntity)
	ctx := context.Background()
	note := env.newNote(t, "", "")

	_, err := svc.GistCallback(ctx, note, "", "s")
	assert.True(t, errors.Is(err, code.ErrorOAuthParamsMissing))
	_, err = svc.GistCallback(ctx, note, "c", "")
	assert.True(t, errors.Is(err, code.ErrorOAuthParamsMissing))

	_, err = svc.GistCallback(ctx, note, "good-code", "unknown")
	assert.True(t, errors.Is(err, code.ErrorOAuthStateInvalid))

	require.NoError(t, env.states.Put(ctx, "s1", note.ID, time.Minute))
	_, err = svc.GistCallback(ctx, note, "bad-code", "s1")
	assert.True(t, errors.Is(err, code.ErrorOAuthExchange))

	require.NoError(t, env.states.Put(ctx, "s2", note.ID, time.Minute))
	_, err = svc.GistCallback(ctx, note, "good-code", "s2")
	assert.True(t, errors.Is(err, code.ErrorGistCreateFailed))
	assert.Equal(t, 403, code.ErrorGistCreateFailed.StatusCode())
}

func TestOAuthService_GistStateExpires(t *testing.T) {
	env, _, svc := newOAuthEnv(t, http.StatusCreated)
	ctx := context.Background()
	note := env.newNote(t, "", "")

	require.NoError(t, env.states.Put(ctx, "old", note.ID, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, err := svc.GistCallback(ctx, note, "good-code", "old")
	assert.True(t, errors.Is(err, code.ErrorOAuthStateInvalid))
}

func TestOAuthService_GitLabProjects(t *testing.T) {
	env, _, svc := newOAuthEnv(t, http.StatusCreated)
	ctx := context.Background()

	_, err := svc.GitLabProjects(ctx, domain.Anonymous)
	assert.True(t, errors.Is(err, code.ErrorForbidden))

	_, err = svc.GitLabProjects(ctx, domain.Requester{UserID: "ghost"})
	assert.True(t, errors.Is(err, code.ErrorUserNotFound))

	_, err = env.userRepo.Create(ctx, &domain.User{ID: "u1", Email: "u1@example.com", ProfileID: "p1", AccessToken: "gl-token"})
	require.NoError(t, err)
	out, err := svc.GitLabProjects(ctx, domain.Requester{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "gl-token", out.AccessToken)
	assert.Equal(t, "p1", out.ProfileID)
	require.Len(t, out.Projects, 1)

	_, err = env.userRepo.Create(ctx, &domain.User{ID: "u2", Email: "u2@example.com", AccessToken: "expired"})
	require.NoError(t, err)
	out, err = svc.GitLabProjects(ctx, domain.Requester{UserID: "u2"})
	require.NoError(t, err)
	assert.Nil(t, out.Projects)
}

func TestOAuthService_GistStateBoundToNote(t *testing.T) {
	env, fake, svc := newOAuthEnv(t, http.StatusCreated)
	ctx := context.Background()
	noteA := env.newNote(t, "", "# A")
	noteB := env.newNote(t, "", "# B")

	require.NoError(t, env.states.Put(ctx, "state-a", noteA.ID, time.Minute))
	_, err := svc.GistCallback(ctx, noteB, "good-code", "state-a")
	assert.True(t, errors.Is(err, code.ErrorOAuthStateInvalid))
	assert.Nil(t, fake.gotFiles)

	// 不匹配时 state 同样被消费
	_, err = svc.GistCallback(ctx, noteA, "good-code", "state-a")
	assert.True(t, errors.Is(err, code.ErrorOAuthStateInvalid))
}
