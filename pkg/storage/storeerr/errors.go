// Package storeerr holds errors shared by the storage backends.
package storeerr

import "errors"

// ErrNotFound 文件不存在
var ErrNotFound = errors.New("storage: not found")
