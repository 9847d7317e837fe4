// Package domain 定义领域模型和接口
package domain

import (
	"net/url"
	"strings"
	"time"
)

// Permission 笔记访问权限
type Permission string

const (
	PermissionPrivate   Permission = "private"
	PermissionLimited   Permission = "limited"
	PermissionProtected Permission = "protected"
	PermissionPublic    Permission = "public"
)

// ParsePermission maps a stored value to a Permission; empty or unknown values are public.
// ParsePermission 将存储值转换为 Permission，空值或未知值视为 public
func ParsePermission(s string) Permission {
	switch p := Permission(s); p {
	case PermissionPrivate, PermissionLimited, PermissionProtected:
		return p
	}
	return PermissionPublic
}

// CanView 判断请求者是否可以查看 ownerID 拥有的笔记
func (p Permission) CanView(r Requester, ownerID string) bool {
	switch p {
	case PermissionPrivate:
		return r.Authenticated() && ownerID != "" && r.UserID == ownerID
	case PermissionLimited, PermissionProtected:
		return r.Authenticated()
	}
	return true
}

// CanEdit reports whether r may change the content. Protected notes are readable by
// signed-in users but editable by the owner only.
// CanEdit 判断请求者是否可以修改内容，protected 笔记仅所有者可改
func (p Permission) CanEdit(r Requester, ownerID string) bool {
	switch p {
	case PermissionPrivate, PermissionProtected:
		return r.Authenticated() && ownerID != "" && r.UserID == ownerID
	case PermissionLimited:
		return r.Authenticated()
	}
	return true
}

// Surface is a page a note can be addressed from. Each has its own canonical token.
// Surface 笔记的访问入口，每个入口有各自的规范 token
type Surface int

const (
	SurfaceNote Surface = iota
	SurfacePublish
	SurfaceSlide
)

// Note 笔记领域模型
type Note struct {
	ID               string
	Namespace        string
	ShortID          string
	Alias            string
	Permission       Permission
	OwnerID          string
	Content          string
	Title            string
	Tags             string
	FilePath         string
	ViewCount        int64
	LastChangeUserID string
	LastChangeAt     time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CanonicalToken is alias when set, otherwise namespace for the note view and shortid
// for the published views.
// CanonicalToken 有别名时返回别名，否则笔记页用 namespace，发布页用 shortid
func (n *Note) CanonicalToken(s Surface) string {
	if n.Alias != "" {
		return n.Alias
	}
	if s == SurfaceNote {
		return n.Namespace
	}
	return n.ShortID
}

// CanonicalPath returns the canonical path of the surface. The token is escaped as one
// path segment since compressed ids may contain '/'.
// CanonicalPath 返回入口的规范路径，token 按单个路径段转义
func (n *Note) CanonicalPath(s Surface) string {
	token := url.PathEscape(n.CanonicalToken(s))
	switch s {
	case SurfacePublish:
		return "/s/" + token
	case SurfaceSlide:
		return "/p/" + token
	}
	return "/" + token
}

// IsCanonical 判断 token 是否为该入口的规范 token
func (n *Note) IsCanonical(token string, s Surface) bool {
	return token == n.CanonicalToken(s)
}

// TagList 拆分逗号分隔的标签
func (n *Note) TagList() []string {
	if n.Tags == "" {
		return []string{}
	}
	parts := strings.Split(n.Tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// HasOwner 判断笔记是否有所有者
func (n *Note) HasOwner() bool {
	return n.OwnerID != ""
}
