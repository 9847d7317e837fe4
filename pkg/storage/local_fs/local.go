package local_fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nexbyte/hackmd/pkg/storage/storeerr"
	"github.com/pkg/errors"
)

type Config struct {
	SavePath string `yaml:"save-path" default:"storage/docs"`
}

// LocalFS stores files under SavePath.
// LocalFS 将文件存储在 SavePath 下
type LocalFS struct {
	Config *Config
}

func NewClient(conf *Config) (*LocalFS, error) {
	if conf == nil || conf.SavePath == "" {
		return nil, errors.New("local_fs: save path is empty")
	}
	return &LocalFS{Config: conf}, nil
}

func (l *LocalFS) fullPath(key string) string {
	return filepath.Join(l.Config.SavePath, filepath.FromSlash(key))
}

// Read 读取文件内容
func (l *LocalFS) Read(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(l.fullPath(key))
	if os.IsNotExist(err) {
		return nil, storeerr.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "local_fs")
	}
	return data, nil
}

// Exists 判断文件是否存在
func (l *LocalFS) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(l.fullPath(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrap(err, "local_fs")
}

// Write replaces the file atomically: temp file in the same directory, fsync, rename.
// Write 原子替换文件：同目录临时文件、fsync、rename
func (l *LocalFS) Write(_ context.Context, key string, content []byte) error {
	dst := l.fullPath(key)
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0754); err != nil {
		return errors.Wrap(err, "local_fs")
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".tmp.%s.%d", filepath.Base(dst), os.Getpid()))
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(err, "local_fs")
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "local_fs")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "local_fs")
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "local_fs")
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "local_fs")
	}

	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
