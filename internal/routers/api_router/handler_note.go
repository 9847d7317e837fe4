package api_router

import (
	"github.com/nexbyte/hackmd/internal/app"
	"github.com/nexbyte/hackmd/internal/dto"
	pkgapp "github.com/nexbyte/hackmd/pkg/app"
	"github.com/nexbyte/hackmd/pkg/code"
	apperrors "github.com/nexbyte/hackmd/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NoteHandler note API router handler
// NoteHandler 笔记 API 路由处理器
type NoteHandler struct {
	*Handler
}

// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App) *NoteHandler {
	return &NoteHandler{Handler: NewHandler(a)}
}

// SaveContent replaces the note content. Title, tags and last change time are
// recomputed from the new content.
// SaveContent 保存笔记内容，标题、标签与修改时间按新内容重新计算
// @Router /api/notes/{noteId}/content [put]
func (h *NoteHandler) SaveContent(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteContentSaveRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("apiRouter.Note.SaveContent.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()...))
		return
	}

	out, err := h.App.ActionService.SaveContent(c.Request.Context(), c.Param("noteId"), params.Content, requester(c))
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(out))
}
