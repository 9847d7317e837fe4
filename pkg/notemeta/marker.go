package notemeta

import (
	"regexp"
	"strings"
)

const (
	markerPrefix = "<!-- hackmd:"
	markerSuffix = " -->"
)

var markerRe = regexp.MustCompile(`<!-- hackmd:(.*)? -->`)

// Marker returns the front-matter marker line carrying a note's compressed id.
// Marker 返回携带笔记压缩 id 的标记行
func Marker(namespace string) string {
	return markerPrefix + namespace + markerSuffix
}

// WithMarker prefixes body with the marker line and a blank line.
// WithMarker 在正文前加上标记行与一个空行
func WithMarker(namespace, body string) string {
	return Marker(namespace) + "\n\n" + body
}

// ParseMarker reads the namespace from a marker line.
// ParseMarker 从标记行解析出压缩 id
func ParseMarker(line string) (namespace string, ok bool) {
	line = strings.TrimRight(line, "\r\n")
	if !markerRe.MatchString(line) {
		return "", false
	}
	ns := strings.Replace(line, markerPrefix, "", 1)
	ns = strings.Replace(ns, markerSuffix, "", 1)
	ns = strings.TrimSpace(ns)
	return ns, ns != ""
}

// StripMarkers removes every marker from content.
// StripMarkers 删除内容中的所有标记
func StripMarkers(content string) string {
	return markerRe.ReplaceAllString(content, "")
}

// FirstLine returns content up to the first line break.
func FirstLine(content string) string {
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		return strings.TrimRight(content[:i], "\r")
	}
	return content
}

// trimLeadingMarker drops a marker on the first line and the blank lines after it.
func trimLeadingMarker(content string) string {
	if _, ok := ParseMarker(FirstLine(content)); !ok {
		return content
	}
	rest := ""
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		rest = content[i+1:]
	}
	return strings.TrimLeft(rest, "\r\n")
}
