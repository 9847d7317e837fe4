package webdav

import (
	"bytes"
	"context"
	"os"
	"path"
	"strings"

	"github.com/nexbyte/hackmd/pkg/storage/storeerr"
	"github.com/pkg/errors"
	"github.com/studio-b12/gowebdav"
)

// Config 结构体用于存储 WebDAV 连接信息。
type Config struct {
	Endpoint   string `yaml:"endpoint"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	CustomPath string `yaml:"custom-path"`
}

// WebDAV 结构体表示 WebDAV 客户端。
type WebDAV struct {
	Client *gowebdav.Client
	Config *Config
}

// NewClient 创建一个新的 WebDAV 客户端实例。
func NewClient(conf *Config) (*WebDAV, error) {
	if conf == nil || conf.Endpoint == "" {
		return nil, errors.New("webdav: endpoint is empty")
	}
	c := gowebdav.NewClient(conf.Endpoint, conf.User, conf.Password)
	return &WebDAV{Client: c, Config: conf}, nil
}

func (w *WebDAV) remote(key string) string {
	return "/" + strings.Trim(path.Join(w.Config.CustomPath, key), "/")
}

// Read 读取远端文件
func (w *WebDAV) Read(_ context.Context, key string) ([]byte, error) {
	data, err := w.Client.Read(w.remote(key))
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, storeerr.ErrNotFound
		}
		return nil, errors.Wrap(err, "webdav")
	}
	return data, nil
}

// Exists 判断远端文件是否存在
func (w *WebDAV) Exists(_ context.Context, key string) (bool, error) {
	_, err := w.Client.Stat(w.remote(key))
	if err == nil {
		return true, nil
	}
	if gowebdav.IsErrNotFound(err) {
		return false, nil
	}
	return false, errors.Wrap(err, "webdav")
}

// Write 写入远端文件，缺失的父目录会被创建
func (w *WebDAV) Write(_ context.Context, key string, content []byte) error {
	remote := w.remote(key)
	if dir := path.Dir(remote); dir != "/" {
		if err := w.Client.MkdirAll(dir, 0754); err != nil {
			return errors.Wrap(err, "webdav")
		}
	}
	if err := w.Client.WriteStream(remote, bytes.NewReader(content), os.ModePerm); err != nil {
		return errors.Wrap(err, "webdav")
	}
	return nil
}
