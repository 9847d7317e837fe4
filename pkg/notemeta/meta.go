// Package notemeta extracts the metadata embedded in note content.
// Package notemeta 解析笔记内容中嵌入的元数据
//
// A stored note looks like:
//
//	<!-- hackmd:<compressed id> -->
//
//	---
//	title: Weekly
//	tags: [team, sync]
//	---
//	# Weekly
package notemeta

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// descriptionLength 自动生成描述的最大字符数
const descriptionLength = 100

// Meta 笔记元数据
type Meta struct {
	Title        string
	Description  string
	Robots       string
	GA           string
	Disqus       string
	Tags         []string
	SlideOptions map[string]interface{}
}

// Extracted is the result of Extract.
type Extracted struct {
	// Markdown is the content without marker and front matter.
	Markdown string
	Meta     Meta
	// Raw is the decoded front matter, nil when absent.
	Raw map[string]interface{}
}

// Extract splits raw note content into markdown body and metadata.
// Extract 将笔记内容拆分为 markdown 正文与元数据
func Extract(content string) Extracted {
	body := trimLeadingMarker(content)
	raw, rest, ok := parseFrontmatter(body)
	if !ok {
		return Extracted{Markdown: body}
	}
	return Extracted{Markdown: rest, Meta: parseMeta(raw), Raw: raw}
}

func parseFrontmatter(content string) (map[string]interface{}, string, bool) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, frontmatterDelimiter+"\n") {
		return nil, content, false
	}

	rest := normalized[len(frontmatterDelimiter)+1:]
	var yamlContent, body string
	if rest == frontmatterDelimiter || strings.HasPrefix(rest, frontmatterDelimiter+"\n") {
		// 空的 front matter
		body = rest[len(frontmatterDelimiter):]
	} else {
		end := strings.Index(rest, "\n"+frontmatterDelimiter)
		if end == -1 {
			return nil, content, false
		}
		yamlContent = rest[:end]
		body = rest[end+len("\n"+frontmatterDelimiter):]
	}
	body = strings.TrimPrefix(body, "\n")

	data := make(map[string]interface{})
	if err := yaml.Unmarshal([]byte(yamlContent), &data); err != nil {
		return nil, content, false
	}
	return data, body, true
}

func parseMeta(raw map[string]interface{}) Meta {
	m := Meta{
		Title:       stringValue(raw["title"]),
		Description: stringValue(raw["description"]),
		Robots:      stringValue(raw["robots"]),
		GA:          stringValue(raw["GA"]),
		Disqus:      stringValue(raw["disqus"]),
		Tags:        tagsValue(raw["tags"]),
	}
	if so, ok := raw["slideOptions"].(map[string]interface{}); ok {
		m.SlideOptions = so
	}
	return m
}

func stringValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case bool, int, int64, float64:
		return fmt.Sprint(t)
	}
	return ""
}

func tagsValue(v interface{}) []string {
	var out []string
	switch t := v.(type) {
	case string:
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []interface{}:
		for _, item := range t {
			if s := strings.TrimSpace(stringValue(item)); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

var revealThemes = map[string]bool{
	"black": true, "white": true, "league": true, "beige": true, "sky": true, "night": true,
	"serif": true, "simple": true, "solarized": true, "blood": true, "moon": true,
}

// SlideTheme returns slideOptions.theme when it names a reveal.js theme.
// SlideTheme 返回合法的 reveal.js 主题，否则为空
func (m Meta) SlideTheme() string {
	if m.SlideOptions == nil {
		return ""
	}
	theme, _ := m.SlideOptions["theme"].(string)
	if revealThemes[theme] {
		return theme
	}
	return ""
}

// GenerateDescription returns the first characters of markdown on a single line.
// GenerateDescription 截取 markdown 开头若干字符并合并为一行
func GenerateDescription(md string) string {
	if utf8.RuneCountInString(md) > descriptionLength {
		md = string([]rune(md)[:descriptionLength])
	}
	md = strings.ReplaceAll(md, "\r\n", " ")
	md = strings.ReplaceAll(md, "\r", " ")
	return strings.ReplaceAll(md, "\n", " ")
}

// DecodeTitle 标题为空时返回 Untitled
func DecodeTitle(title string) string {
	if title == "" {
		return "Untitled"
	}
	return title
}

// GenerateWebTitle 生成页面标题
func GenerateWebTitle(title string) string {
	if title == "" {
		return "HackMD"
	}
	return title + " - HackMD"
}
