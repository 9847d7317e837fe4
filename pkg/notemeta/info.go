package notemeta

import (
	"regexp"
	"strings"

	"github.com/nexbyte/hackmd/pkg/markdown"
)

// Info is what a save derives from content: title and tags.
// Info 保存笔记时从内容中提取的标题与标签
type Info struct {
	Title string
	Tags  []string
}

var (
	tagsLineRe = regexp.MustCompile(`(?m)^#{1,6}\s*tags\s*:\s*(.+)$`)
	inlineTag  = regexp.MustCompile("`([^`]+)`")
)

// Parser derives Info from note content.
// Parser 从笔记内容提取 Info
type Parser struct {
	md *markdown.Converter
}

func NewParser(md *markdown.Converter) *Parser {
	return &Parser{md: md}
}

// ParseNoteInfo takes the title from meta, else from the first level-1 heading; tags
// from meta, else from a "###### tags: `a` `b`" line.
// ParseNoteInfo 标题优先取元数据，其次取第一个一级标题；标签优先取元数据，其次取 tags 行
func (p *Parser) ParseNoteInfo(content string) Info {
	ex := Extract(content)

	info := Info{Title: ex.Meta.Title, Tags: ex.Meta.Tags}
	if info.Title == "" {
		info.Title = p.md.FirstHeading(ex.Markdown, 1)
	}
	if len(info.Tags) == 0 {
		info.Tags = tagsFromLine(ex.Markdown)
	}
	return info
}

func tagsFromLine(md string) []string {
	m := tagsLineRe.FindStringSubmatch(md)
	if m == nil {
		return nil
	}
	var tags []string
	for _, t := range inlineTag.FindAllStringSubmatch(m[1], -1) {
		if s := strings.TrimSpace(t[1]); s != "" {
			tags = append(tags, s)
		}
	}
	return tags
}
