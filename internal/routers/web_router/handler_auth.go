package web_router

import (
	"github.com/nexbyte/hackmd/internal/app"

	"github.com/gin-gonic/gin"
)

// AuthHandler OAuth 回调
type AuthHandler struct {
	*Handler
}

// NewAuthHandler 创建 AuthHandler 实例
func NewAuthHandler(a *app.App, r Renderer) *AuthHandler {
	return &AuthHandler{Handler: NewHandler(a, r)}
}

// GitHubCallback GitHub 授权回调，gist 操作创建 gist
// GET /auth/github/callback/:noteId/:action
func (h *AuthHandler) GitHubCallback(c *gin.Context) {
	eff := h.App.ActionService.GitHubCallback(c.Request.Context(),
		c.Param("noteId"), c.Param("action"), c.Query("code"), c.Query("state"), requester(c))
	h.WriteEffect(c, eff)
}

// GitLabCallback GitLab 回调，projects 操作返回项目列表
// GET /auth/gitlab/callback/:noteId/:action
func (h *AuthHandler) GitLabCallback(c *gin.Context) {
	eff := h.App.ActionService.GitLabCallback(c.Request.Context(), c.Param("noteId"), c.Param("action"), requester(c))
	h.WriteEffect(c, eff)
}
