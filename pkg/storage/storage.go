// Package storage mirrors note content to a file tree: the local docs directory, a
// WebDAV share or an S3 compatible bucket.
// Package storage 将笔记内容镜像到文件树：本地文档目录、WebDAV 或 S3 兼容存储
package storage

import (
	"context"
	"path"
	"strings"

	"github.com/nexbyte/hackmd/pkg/storage/aws_s3"
	"github.com/nexbyte/hackmd/pkg/storage/local_fs"
	"github.com/nexbyte/hackmd/pkg/storage/storeerr"
	"github.com/nexbyte/hackmd/pkg/storage/webdav"
	"github.com/pkg/errors"
)

type Type = string

const (
	LOCAL  Type = "localfs"
	S3     Type = "s3"
	WebDAV Type = "webdav"
)

var (
	// ErrNotFound 文件不存在
	ErrNotFound = storeerr.ErrNotFound
	// ErrInvalidPath 路径为空或越出根目录
	ErrInvalidPath = errors.New("storage: invalid path")
	// ErrInvalidType 不支持的存储类型
	ErrInvalidType = errors.New("storage: invalid storage type")
)

// Config 存储配置
type Config struct {
	Type Type `yaml:"type" default:"localfs"`

	// Local FS 根目录
	SavePath string `yaml:"save-path" default:"storage/docs"`

	// WebDAV
	Endpoint string `yaml:"endpoint"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	// S3 兼容存储（AWS、MinIO、R2 通过 endpoint 区分）
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	UsePathStyle    bool   `yaml:"use-path-style"`

	// CustomPath 远端存储的路径前缀
	CustomPath string `yaml:"custom-path"`
}

// Storager is a flat key/value view of the mirror; keys are slash separated paths
// already confined by CleanPath.
// Storager 文件镜像的键值视图，key 为经过 CleanPath 约束的相对路径
type Storager interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, content []byte) error
	Exists(ctx context.Context, key string) (bool, error)
}

// NewClient 根据配置创建存储客户端
func NewClient(ctx context.Context, config *Config) (Storager, error) {
	if config == nil {
		return nil, ErrInvalidType
	}
	switch config.Type {
	case LOCAL, "":
		return local_fs.NewClient(&local_fs.Config{SavePath: config.SavePath})
	case WebDAV:
		return webdav.NewClient(&webdav.Config{
			Endpoint:   config.Endpoint,
			User:       config.User,
			Password:   config.Password,
			CustomPath: config.CustomPath,
		})
	case S3:
		return aws_s3.NewClient(ctx, &aws_s3.Config{
			Endpoint:        config.Endpoint,
			Region:          config.Region,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
			UsePathStyle:    config.UsePathStyle,
		})
	}
	return nil, ErrInvalidType
}

// CleanPath turns a user supplied path into a key inside the mirror root. Leading
// slashes and ".." segments cannot climb above the root; root itself is rejected.
// An absolute path under localRoot is accepted and made relative.
// CleanPath 将用户提供的路径转换为根目录内的 key，".." 无法越出根目录
func CleanPath(p string, localRoot string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	if localRoot != "" {
		root := strings.TrimSuffix(strings.ReplaceAll(localRoot, "\\", "/"), "/") + "/"
		p = strings.TrimPrefix(p, root)
	}
	key := strings.TrimPrefix(path.Clean("/"+p), "/")
	if key == "" || key == "." {
		return "", ErrInvalidPath
	}
	return key, nil
}

// EnsureExt appends ext unless key already ends with it.
// EnsureExt 确保 key 以 ext 结尾
func EnsureExt(key, ext string) string {
	if strings.HasSuffix(key, ext) {
		return key
	}
	return key + ext
}
