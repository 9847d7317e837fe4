package web_router

import (
	"net/url"

	"github.com/nexbyte/hackmd/internal/app"
	"github.com/nexbyte/hackmd/internal/dto"
	pkgapp "github.com/nexbyte/hackmd/pkg/app"
	"github.com/nexbyte/hackmd/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LifecycleHandler 新建、打开与关联文件
type LifecycleHandler struct {
	*Handler
}

// NewLifecycleHandler 创建 LifecycleHandler 实例
func NewLifecycleHandler(a *app.App, r Renderer) *LifecycleHandler {
	return &LifecycleHandler{Handler: NewHandler(a, r)}
}

// New 新建笔记
// GET /new
func (h *LifecycleHandler) New(c *gin.Context) {
	h.WriteEffect(c, h.App.ActionService.NewNote(c.Request.Context(), requester(c)))
}

// Open takes the whole query string as a path below the docs directory, e.g.
// /open?team/weekly.md
// Open 整个 query 即文档目录下的相对路径
// GET /open
func (h *LifecycleHandler) Open(c *gin.Context) {
	relPath := c.Request.URL.RawQuery
	if p, err := url.QueryUnescape(relPath); err == nil {
		relPath = p
	}
	h.WriteEffect(c, h.App.ActionService.OpenFile(c.Request.Context(), relPath, requester(c)))
}

// NewNotePath 设置笔记的文件路径
// GET /newnotepath?filePath=&namespace=
func (h *LifecycleHandler) NewNotePath(c *gin.Context) {
	params := &dto.NotePathRequest{}
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Info("LifecycleHandler.NewNotePath.BindAndValid err", zap.Error(errs))
		h.WriteError(c, code.ErrorBadRequest.WithDetails(errs.ErrorsToString()...))
		return
	}
	h.WriteEffect(c, h.App.ActionService.SaveNotePath(c.Request.Context(), params, requester(c)))
}

// NotFound 固定的 404 页面，/open 找不到文件时跳转到这里
// GET /404
func (h *LifecycleHandler) NotFound(c *gin.Context) {
	h.WriteError(c, code.ErrorNotFound)
}
