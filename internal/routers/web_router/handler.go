package web_router

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/nexbyte/hackmd/internal/app"
	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/internal/middleware"
	"github.com/nexbyte/hackmd/internal/service"
	pkgapp "github.com/nexbyte/hackmd/pkg/app"
	"github.com/nexbyte/hackmd/pkg/code"
	"github.com/nexbyte/hackmd/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 基础 Handler 结构体，封装 App Container 与页面渲染器
type Handler struct {
	App      *app.App
	Renderer Renderer
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App, r Renderer) *Handler {
	return &Handler{App: a, Renderer: r}
}

func (h *Handler) pageBase() service.PageBase {
	cfg := h.App.Config()
	return service.PageBase{
		URL:            strings.TrimSuffix(cfg.App.ServerURL, "/"),
		UseCDN:         cfg.App.UseCDN,
		AllowAnonymous: cfg.App.AllowAnonymous,
		AllowPDFExport: cfg.App.AllowPDFExport,
	}
}

// WriteError renders the error page for e. It is the ErrorWriter of page routes.
// WriteError 渲染错误页，用作页面路由的 ErrorWriter
func (h *Handler) WriteError(c *gin.Context, e *code.Code) {
	h.WriteEffect(c, &service.Effect{Kind: service.EffectError, Status: e.StatusCode(), Err: e})
}

// WriteEffect writes eff to the response. Header names are stored as given so that
// names like Content-disposition keep their case.
// WriteEffect 输出 Effect，响应头名称按原样写入
func (h *Handler) WriteEffect(c *gin.Context, eff *service.Effect) {
	header := c.Writer.Header()
	for _, hd := range eff.Headers {
		header[hd.Name] = []string{hd.Value}
	}

	switch eff.Kind {
	case service.EffectRender:
		h.render(c, eff.Status, eff.View, eff.Data)

	case service.EffectRedirect:
		header.Set("Location", eff.Location)
		c.Status(eff.Status)
		c.Writer.WriteHeaderNow()

	case service.EffectBytes:
		if _, ok := header["Content-Type"]; !ok && eff.ContentType != "" {
			header["Content-Type"] = []string{eff.ContentType}
		}
		c.Status(eff.Status)
		if _, err := c.Writer.Write(eff.Body); err != nil {
			h.App.Logger().Warn("write response body failed", zap.String(logger.FieldTraceID, pkgapp.GetTraceIDFromGin(c)), zap.Error(err))
		}

	case service.EffectJSON:
		c.JSON(eff.Status, eff.Data)

	case service.EffectError:
		e := eff.Err
		if e == nil {
			e = code.ErrorInternal
		}
		if e.HaveDetails() {
			h.App.Logger().Info("request failed",
				zap.String("path", c.Request.URL.Path),
				zap.Int("status", e.StatusCode()),
				zap.Strings("details", e.Details()),
				zap.String(logger.FieldTraceID, pkgapp.GetTraceIDFromGin(c)))
		}
		h.render(c, e.StatusCode(), service.ViewError, &service.ErrorPage{
			PageBase: h.pageBase(),
			Title:    e.Title(),
			Code:     e.StatusCode(),
			Detail:   e.Title(),
			Msg:      e.Msg(),
		})
	}
}

func (h *Handler) render(c *gin.Context, status int, view string, data any) {
	var buf bytes.Buffer
	if err := h.Renderer.Render(&buf, view, data); err != nil {
		h.App.Logger().Error("render view failed", zap.String("view", view), zap.Error(err))
		if view != service.ViewError {
			h.WriteError(c, code.ErrorInternal)
			return
		}
		c.String(http.StatusInternalServerError, "Internal Error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// requester 当前请求者
func requester(c *gin.Context) domain.Requester {
	return middleware.RequesterFrom(c)
}
