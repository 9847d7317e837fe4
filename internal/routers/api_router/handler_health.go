package api_router

import (
	"time"

	"github.com/nexbyte/hackmd/internal/app"
	"github.com/nexbyte/hackmd/internal/dto"
	pkgapp "github.com/nexbyte/hackmd/pkg/app"
	"github.com/nexbyte/hackmd/pkg/code"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	*Handler
}

// NewHealthHandler 创建健康检查处理器实例
func NewHealthHandler(a *app.App) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(a)}
}

// Check 检查服务状态与数据库连接，关闭过程中返回 503
// @Router /api/health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	out := dto.HealthDTO{
		Status:   "healthy",
		Version:  h.App.Version().Version,
		Uptime:   time.Since(h.App.StartTime).Seconds(),
		Database: "connected",
	}

	if h.App.IsShuttingDown() {
		out.Status = "shutting_down"
		pkgapp.NewResponse(c).ToResponse(code.ErrorServiceUnavailable.WithData(out))
		return
	}

	if err := h.App.DB.WithContext(c.Request.Context()).Exec("SELECT 1").Error; err != nil {
		out.Status = "unhealthy"
		out.Database = "error"
		pkgapp.NewResponse(c).ToResponse(code.ErrorServiceUnavailable.WithData(out))
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(out))
}
