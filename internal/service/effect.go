package service

import (
	"net/http"

	"github.com/nexbyte/hackmd/pkg/code"
	"github.com/pkg/errors"
)

// EffectKind 操作结果类型
type EffectKind int

const (
	EffectRender EffectKind = iota
	EffectRedirect
	EffectBytes
	EffectJSON
	EffectError
)

// Header is one response header. Names are written as given, without canonicalization.
// Header 响应头，名称按原样写出
type Header struct {
	Name  string
	Value string
}

// Effect is what a handler should send: a rendered view, a redirect, raw bytes, JSON
// or an error page.
// Effect 描述处理结果：渲染页面、跳转、原始字节、JSON 或错误页
type Effect struct {
	Kind    EffectKind
	Status  int
	Headers []Header

	View string
	Data any // view data or JSON body // 页面数据或 JSON 内容

	Location string

	ContentType string
	Body        []byte

	Err *code.Code
}

// With 追加响应头
func (e *Effect) With(headers ...Header) *Effect {
	e.Headers = append(e.Headers, headers...)
	return e
}

// RenderEffect 渲染页面
func RenderEffect(view string, data any) *Effect {
	return &Effect{Kind: EffectRender, Status: http.StatusOK, View: view, Data: data}
}

// RedirectEffect 302 跳转
func RedirectEffect(location string) *Effect {
	return &Effect{Kind: EffectRedirect, Status: http.StatusFound, Location: location}
}

// BytesEffect 发送原始内容
func BytesEffect(contentType string, body []byte) *Effect {
	return &Effect{Kind: EffectBytes, Status: http.StatusOK, ContentType: contentType, Body: body}
}

// JSONEffect 发送 JSON
func JSONEffect(data any) *Effect {
	return &Effect{Kind: EffectJSON, Status: http.StatusOK, Data: data}
}

// ErrorEffect 渲染错误页，非 *code.Code 的错误视为内部错误
func ErrorEffect(err error) *Effect {
	var c *code.Code
	if !errors.As(err, &c) || c == nil {
		c = code.ErrorInternal
	}
	return &Effect{Kind: EffectError, Status: c.StatusCode(), Err: c}
}

// corsHeaders 允许跨域访问的响应头
func corsHeaders() []Header {
	return []Header{
		{"Access-Control-Allow-Origin", "*"},
		{"Access-Control-Allow-Headers", "Range"},
		{"Access-Control-Expose-Headers", "Cache-Control, Content-Encoding, Content-Range"},
	}
}

// apiHeaders CORS + 私有缓存 + 禁止收录，只读 API 共用
func apiHeaders() []Header {
	return append(corsHeaders(),
		Header{"Cache-Control", "private"},
		Header{"X-Robots-Tag", "noindex, nofollow"},
	)
}
