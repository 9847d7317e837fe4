package fileurl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePathAndIsExist(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "config", "nested", "config.yaml")

	assert.False(t, IsExist(dst))
	require.NoError(t, CreatePath(dst, os.ModePerm))
	assert.True(t, IsExist(filepath.Dir(dst)))
	assert.False(t, IsExist(dst))

	require.NoError(t, os.WriteFile(dst, []byte("x"), 0o644))
	assert.True(t, IsExist(dst))
}
