package domain

import "strings"

// NoteAction is a note action resolved once from the route segment.
// NoteAction 在路由层解析一次的笔记操作
type NoteAction int

const (
	ActionUnknown NoteAction = iota
	ActionPublish
	ActionSlide
	ActionDownload
	ActionInfo
	ActionPDF
	ActionGist
	ActionRevision
)

var actionNames = map[NoteAction]string{
	ActionUnknown:  "unknown",
	ActionPublish:  "publish",
	ActionSlide:    "slide",
	ActionDownload: "download",
	ActionInfo:     "info",
	ActionPDF:      "pdf",
	ActionGist:     "gist",
	ActionRevision: "revision",
}

func (a NoteAction) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

// ParseNoteAction maps a route segment to an action. "pretty" is the deprecated name of
// publish. Every name beginning with "pdf" is the PDF action; only names beginning with
// "pdf-" carry a template id, the rest after the dash.
// ParseNoteAction 解析路由中的操作名，pretty 为 publish 的旧名，pdf 开头的都是 PDF 导出
func ParseNoteAction(name string) (NoteAction, string) {
	switch name {
	case "publish", "pretty":
		return ActionPublish, ""
	case "slide":
		return ActionSlide, ""
	case "download":
		return ActionDownload, ""
	case "info":
		return ActionInfo, ""
	case "gist":
		return ActionGist, ""
	case "revision":
		return ActionRevision, ""
	}
	if templateID, ok := strings.CutPrefix(name, "pdf-"); ok {
		return ActionPDF, templateID
	}
	if strings.HasPrefix(name, "pdf") {
		return ActionPDF, ""
	}
	return ActionUnknown, ""
}
