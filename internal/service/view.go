package service

import (
	"html/template"

	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/pkg/timex"
)

// 视图名称
const (
	ViewNote    = "note"
	ViewPublish = "publish"
	ViewSlide   = "slide"
	ViewNew     = "new"
	ViewError   = "error"
)

// PageBase 所有页面共用的数据
type PageBase struct {
	URL            string
	UseCDN         bool
	AllowAnonymous bool
	AllowPDFExport bool
}

// NotePage 编辑页数据
type NotePage struct {
	PageBase
	Title string
	Note  *domain.Note
}

// NewNotePage 发布未写入镜像时的回退页
type NewNotePage struct {
	PageBase
	Namespace string
	Note      *domain.Note
}

// PublishPage 发布页与幻灯片页数据
type PublishPage struct {
	PageBase
	Title       string
	Description string
	ViewCount   int64
	CreateTime  timex.Time
	UpdateTime  timex.Time
	// Body 发布页为渲染后的 HTML，幻灯片页为去掉元数据的 markdown
	Body     template.HTML
	Markdown string
	Theme    string
	Robots   string
	GA       string
	Disqus   string
}

// ErrorPage 错误页数据
type ErrorPage struct {
	PageBase
	Title  string
	Code   int
	Detail string
	Msg    string
}
