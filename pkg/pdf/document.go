package pdf

import (
	"bytes"
	"html/template"
)

var documentTmpl = template.Must(template.New("pdf").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{range .Styles}}<style>{{.}}</style>
{{end}}</head>
<body>
<div id="pageContent">{{.Body}}
<span style="font-family:'sans-serif'">&nbsp;</span>
</div>
</body>
</html>
`))

// Document PDF 源文档
type Document struct {
	Title string
	// Body 已渲染的笔记 HTML
	Body string
	// Styles 依次内联的 CSS
	Styles []string
}

// HTML builds the page handed to the renderer. Body and Styles are trusted output of
// the markdown converter and the template directory.
// HTML 生成交给渲染器的完整页面
func (d Document) HTML() (string, error) {
	styles := make([]template.CSS, 0, len(d.Styles))
	for _, s := range d.Styles {
		styles = append(styles, template.CSS(s))
	}
	var buf bytes.Buffer
	err := documentTmpl.Execute(&buf, struct {
		Title  string
		Body   template.HTML
		Styles []template.CSS
	}{
		Title:  d.Title,
		Body:   template.HTML(d.Body),
		Styles: styles,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
