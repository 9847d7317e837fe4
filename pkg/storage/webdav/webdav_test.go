package webdav

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/nexbyte/hackmd/pkg/storage/storeerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xwebdav "golang.org/x/net/webdav"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(&xwebdav.Handler{
		FileSystem: xwebdav.NewMemFS(),
		LockSystem: xwebdav.NewMemLS(),
	})
	t.Cleanup(srv.Close)
	return srv
}

func TestWebDAV_WriteReadExists(t *testing.T) {
	srv := newServer(t)
	client, err := NewClient(&Config{Endpoint: srv.URL, CustomPath: "mirror"})
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := client.Exists(ctx, "team/a.md")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = client.Read(ctx, "team/a.md")
	assert.ErrorIs(t, err, storeerr.ErrNotFound)

	require.NoError(t, client.Write(ctx, "team/a.md", []byte("# hello")))

	data, err := client.Read(ctx, "team/a.md")
	require.NoError(t, err)
	assert.Equal(t, "# hello", string(data))

	ok, err = client.Exists(ctx, "team/a.md")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewClient_EmptyEndpoint(t *testing.T) {
	_, err := NewClient(&Config{})
	assert.Error(t, err)
}
