// Package markdown renders note markdown to HTML.
// Package markdown 将笔记 markdown 渲染为 HTML
package markdown

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Converter wraps a configured goldmark instance. Safe for concurrent use.
// Converter 封装配置好的 goldmark 实例，可并发使用
type Converter struct {
	md goldmark.Markdown
}

// Option 配置项
type Option func(*options)

type options struct {
	codeStyle string
	unsafe    bool
}

// WithCodeStyle 设置代码高亮使用的 chroma 样式
func WithCodeStyle(style string) Option {
	return func(o *options) { o.codeStyle = style }
}

// WithUnsafeHTML keeps raw HTML blocks in the output.
func WithUnsafeHTML() Option {
	return func(o *options) { o.unsafe = true }
}

// New 创建 Converter
func New(opts ...Option) *Converter {
	o := &options{codeStyle: "github"}
	for _, opt := range opts {
		opt(o)
	}

	rendererOpts := []renderer.Option{
		html.WithXHTML(),
		renderer.WithNodeRenderers(util.Prioritized(newCodeBlockRenderer(o.codeStyle), 200)),
	}
	if o.unsafe {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}

	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(rendererOpts...),
		),
	}
}

// ToHTML 将 markdown 转换为 HTML
func (c *Converter) ToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(src), &buf); err != nil {
		return "", errors.Wrap(err, "markdown: convert")
	}
	return buf.String(), nil
}

// FirstHeading returns the plain text of the first heading of the given level, or "".
// FirstHeading 返回指定级别第一个标题的纯文本，没有时返回空串
func (c *Converter) FirstHeading(src string, level int) string {
	source := []byte(src)
	doc := c.md.Parser().Parse(text.NewReader(source))

	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok && h.Level == level {
			title = strings.TrimSpace(plainText(h, source))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}

func plainText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}
