package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/pkg/code"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewFileService(env.mirror, nil, env.cfg)
	user := domain.Requester{UserID: "u1"}

	_, err := svc.Exists(ctx, domain.Anonymous, "a.md")
	assert.True(t, errors.Is(err, code.ErrorForbidden))
	_, err = svc.Create(ctx, domain.Anonymous, "a.md")
	assert.True(t, errors.Is(err, code.ErrorForbidden))

	out, err := svc.Exists(ctx, user, "notes/a.md")
	require.NoError(t, err)
	assert.False(t, out.FileExists)

	created, err := svc.Create(ctx, user, "notes/a.md")
	require.NoError(t, err)
	assert.True(t, created.Success)
	assert.Equal(t, "notes/a.md", created.FilePath)

	data, err := os.ReadFile(filepath.Join(env.docs, "notes", "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "New File created", string(data))

	// 绝对路径位于文档目录下时按相对路径处理
	out, err = svc.Exists(ctx, user, filepath.ToSlash(filepath.Join(env.docs, "notes", "a.md")))
	require.NoError(t, err)
	assert.True(t, out.FileExists)
	assert.Equal(t, "notes/a.md", out.FilePath)

	// 无法越出文档目录
	out, err = svc.Exists(ctx, user, "../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "etc/passwd", out.FilePath)
	assert.False(t, out.FileExists)

	_, err = svc.Create(ctx, user, "/")
	assert.True(t, errors.Is(err, code.ErrorFilePathInvalid))
}
