// Package idcodec converts note ids to and from their URL tokens.
// Package idcodec 负责笔记 id 与 URL 标识之间的转换
//
// A note id is a UUID. Its compressed token is the lz-string base64 encoding of the
// UUID text; it is what the note page URL and the front-matter marker carry. Short ids
// are random and only stored, never derived.
package idcodec

import (
	"strings"

	lzstring "github.com/daku10/go-lz-string"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/teris-io/shortid"
)

// shortIDAlphabet is the default teris-io/shortid alphabet.
const shortIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_-"

// NewID 生成新的笔记 id
func NewID() string {
	return uuid.NewString()
}

// Encode compresses a note id into its URL token.
// Encode 将笔记 id 压缩为 URL 标识
func Encode(id string) (string, error) {
	token, err := lzstring.CompressToBase64(id)
	if err != nil {
		return "", errors.Wrap(err, "idcodec: compress")
	}
	return token, nil
}

// Decode reverses Encode. ok is false when token is not a compressed UUID.
// Decode 还原 Encode 的结果，token 不是压缩后的 UUID 时 ok 为 false
func Decode(token string) (id string, ok bool) {
	if token == "" {
		return "", false
	}
	out, err := lzstring.DecompressFromBase64(token)
	if err != nil || out == "" {
		return "", false
	}
	if !IsUUID(out) {
		return "", false
	}
	return out, true
}

// IsUUID reports whether s is a canonical hyphenated UUID.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// NewShortID 生成短 id
func NewShortID() (string, error) {
	id, err := shortid.Generate()
	if err != nil {
		return "", errors.Wrap(err, "idcodec: shortid")
	}
	return id, nil
}

// IsShortID reports whether s could have been produced by NewShortID.
// IsShortID 判断 s 是否可能是 NewShortID 生成的短 id
func IsShortID(s string) bool {
	if len(s) < 7 || len(s) > 14 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(shortIDAlphabet, r) {
			return false
		}
	}
	return true
}
