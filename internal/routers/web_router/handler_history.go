package web_router

import (
	"net/http"

	"github.com/nexbyte/hackmd/internal/app"
	"github.com/nexbyte/hackmd/internal/dto"
	pkgapp "github.com/nexbyte/hackmd/pkg/app"
	"github.com/nexbyte/hackmd/pkg/code"
	apperrors "github.com/nexbyte/hackmd/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HistoryHandler 浏览历史与文档目录文件
type HistoryHandler struct {
	*Handler
}

// NewHistoryHandler 创建 HistoryHandler 实例
func NewHistoryHandler(a *app.App, r Renderer) *HistoryHandler {
	return &HistoryHandler{Handler: NewHandler(a, r)}
}

// List returns the notes owned by the signed-in user, newest first.
// List 返回当前用户拥有的笔记
// GET /history
func (h *HistoryHandler) List(c *gin.Context) {
	out, err := h.App.NoteService.History(c.Request.Context(), requester(c))
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	pkgapp.NewResponse(c).ToData(http.StatusOK, out)
}

// NotImplemented 历史写入与删除由客户端本地维护
// POST /history, DELETE /history, DELETE /history/:noteId
func (h *HistoryHandler) NotImplemented(c *gin.Context) {
	pkgapp.NewResponse(c).ToResponse(code.ErrorNotImplemented)
}

// FileExists 检查文档目录下的文件
// GET /fileexists?path=
func (h *HistoryHandler) FileExists(c *gin.Context) {
	params := &dto.FilePathRequest{}
	if valid, errs := pkgapp.BindAndValid(c, params); !valid {
		h.App.Logger().Info("HistoryHandler.FileExists.BindAndValid err", zap.Error(errs))
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()...))
		return
	}
	out, err := h.App.FileService.Exists(c.Request.Context(), requester(c), params.Path)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	pkgapp.NewResponse(c).ToData(http.StatusOK, out)
}

// CreateFile 在文档目录下创建占位文件
// GET /createfile?path=
func (h *HistoryHandler) CreateFile(c *gin.Context) {
	params := &dto.FilePathRequest{}
	if valid, errs := pkgapp.BindAndValid(c, params); !valid {
		h.App.Logger().Info("HistoryHandler.CreateFile.BindAndValid err", zap.Error(errs))
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()...))
		return
	}
	out, err := h.App.FileService.Create(c.Request.Context(), requester(c), params.Path)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	pkgapp.NewResponse(c).ToData(http.StatusOK, out)
}
