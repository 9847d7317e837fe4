package web_router

import (
	"github.com/nexbyte/hackmd/internal/app"
	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/internal/service"

	"github.com/gin-gonic/gin"
)

// NoteHandler 笔记页面与笔记操作
type NoteHandler struct {
	*Handler
}

// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App, r Renderer) *NoteHandler {
	return &NoteHandler{Handler: NewHandler(a, r)}
}

// Show 编辑页
// GET /:noteId
func (h *NoteHandler) Show(c *gin.Context) {
	eff := h.App.ActionService.ShowNote(c.Request.Context(), c.Param("noteId"), requester(c))
	h.WriteEffect(c, eff)
}

// Action runs the note action named by the second path segment.
// Action 执行第二段路径指定的笔记操作
// GET /:noteId/:action
// GET /:noteId/:action/:actionId
func (h *NoteHandler) Action(c *gin.Context) {
	name := c.Param("action")
	action, templateID := domain.ParseNoteAction(name)

	eff := h.App.ActionService.Dispatch(c.Request.Context(), service.ActionRequest{
		Action:     action,
		Name:       name,
		TemplateID: templateID,
		ActionID:   c.Param("actionId"),
		NoteToken:  c.Param("noteId"),
		Requester:  requester(c),
	})
	h.WriteEffect(c, eff)
}

// Published 发布页
// GET /s/:shortid
func (h *NoteHandler) Published(c *gin.Context) {
	eff := h.App.ActionService.ShowPublished(c.Request.Context(), c.Param("shortid"), domain.SurfacePublish, requester(c))
	h.WriteEffect(c, eff)
}

// PublishedAction 发布页下的操作
// GET /s/:shortid/:action
func (h *NoteHandler) PublishedAction(c *gin.Context) {
	eff := h.App.ActionService.PublishedAction(c.Request.Context(), c.Param("shortid"), domain.SurfacePublish, c.Param("action"), requester(c))
	h.WriteEffect(c, eff)
}

// Slide 幻灯片页
// GET /p/:shortid
func (h *NoteHandler) Slide(c *gin.Context) {
	eff := h.App.ActionService.ShowPublished(c.Request.Context(), c.Param("shortid"), domain.SurfaceSlide, requester(c))
	h.WriteEffect(c, eff)
}

// SlideAction 幻灯片页下的操作
// GET /p/:shortid/:action
func (h *NoteHandler) SlideAction(c *gin.Context) {
	eff := h.App.ActionService.PublishedAction(c.Request.Context(), c.Param("shortid"), domain.SurfaceSlide, c.Param("action"), requester(c))
	h.WriteEffect(c, eff)
}
