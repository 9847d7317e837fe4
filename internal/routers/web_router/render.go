// Package web_router 提供笔记页面与笔记操作路由
package web_router

import (
	"bytes"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// Renderer renders a named view. Views are note, publish, slide, new and error.
// Renderer 渲染指定名称的页面
type Renderer interface {
	Render(w io.Writer, view string, data any) error
}

// HTMLRenderer renders html/template files; each file is one view named after the
// file without extension.
// HTMLRenderer 基于 html/template 的渲染器，每个文件是一个以文件名命名的页面
type HTMLRenderer struct {
	views map[string]*template.Template
}

// NewHTMLRenderer 解析 fsys 根目录下所有 .html 文件
func NewHTMLRenderer(fsys fs.FS) (*HTMLRenderer, error) {
	files, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, errors.Wrap(err, "web_router: list views")
	}
	if len(files) == 0 {
		return nil, errors.New("web_router: no views found")
	}

	r := &HTMLRenderer{views: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), path.Ext(f))
		t, err := template.New(path.Base(f)).ParseFS(fsys, f)
		if err != nil {
			return nil, errors.Wrapf(err, "web_router: parse view %s", f)
		}
		r.views[name] = t
	}
	return r, nil
}

func (r *HTMLRenderer) Render(w io.Writer, view string, data any) error {
	t, ok := r.views[view]
	if !ok {
		return errors.Errorf("web_router: unknown view %q", view)
	}
	// 先渲染到缓冲区，模板出错时不会写出半个页面
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return errors.Wrapf(err, "web_router: render %s", view)
	}
	_, err := buf.WriteTo(w)
	return err
}
