package routers

import (
	"github.com/nexbyte/hackmd/internal/app"
	"github.com/nexbyte/hackmd/internal/middleware"
	"github.com/nexbyte/hackmd/internal/routers/api_router"
	"github.com/nexbyte/hackmd/internal/routers/web_router"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// NewRouter builds the public router. Page routes answer errors with the rendered
// error view; /api routes answer with the JSON envelope.
// NewRouter 创建公开路由，页面路由输出错误页，/api 路由输出 JSON
func NewRouter(renderer web_router.Renderer, appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()
	logger := appContainer.Logger()

	page := web_router.NewHandler(appContainer, renderer)

	r := gin.New()
	// 重定向地址中的 token 经过转义，路由按原始路径匹配
	r.UseRawPath = true
	r.UnescapePathValues = true

	r.Use(middleware.TraceMiddlewareWithConfig(cfg.Tracer.Enabled, cfg.Tracer.Header))
	r.Use(middleware.AccessLogWithLogger(logger))
	r.Use(middleware.RecoveryWithLogger(logger, page.WriteError))
	r.Use(middleware.ContextTimeout(cfg.GetContextTimeout()))
	r.Use(middleware.LangWithTranslator(uni))
	r.Use(middleware.Identify(appContainer.TokenManager, logger))

	api := r.Group("/api")
	{
		noteHandler := api_router.NewNoteHandler(appContainer)
		versionHandler := api_router.NewVersionHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)

		api.GET("/version", versionHandler.ServerVersion)
		api.GET("/health", healthHandler.Check)
		api.PUT("/notes/:noteId/content", noteHandler.SaveContent)
	}

	lifecycleHandler := web_router.NewLifecycleHandler(appContainer, renderer)
	historyHandler := web_router.NewHistoryHandler(appContainer, renderer)
	authHandler := web_router.NewAuthHandler(appContainer, renderer)
	noteHandler := web_router.NewNoteHandler(appContainer, renderer)

	r.GET("/new", middleware.RateLimiter(appContainer.Limiter, page.WriteError), lifecycleHandler.New)
	r.GET("/open", lifecycleHandler.Open)
	r.GET("/newnotepath", lifecycleHandler.NewNotePath)
	r.GET("/404", lifecycleHandler.NotFound)

	r.GET("/history", historyHandler.List)
	r.POST("/history", historyHandler.NotImplemented)
	r.DELETE("/history", historyHandler.NotImplemented)
	r.DELETE("/history/:noteId", historyHandler.NotImplemented)
	r.GET("/fileexists", historyHandler.FileExists)
	r.GET("/createfile", historyHandler.CreateFile)

	r.GET("/auth/github/callback/:noteId/:action", authHandler.GitHubCallback)
	r.GET("/auth/gitlab/callback/:noteId/:action", authHandler.GitLabCallback)

	// 发布页与幻灯片
	r.GET("/s/:shortid", noteHandler.Published)
	r.GET("/s/:shortid/:action", noteHandler.PublishedAction)
	r.GET("/p/:shortid", noteHandler.Slide)
	r.GET("/p/:shortid/:action", noteHandler.SlideAction)

	// 笔记与笔记操作
	r.GET("/:noteId", noteHandler.Show)
	r.GET("/:noteId/:action", noteHandler.Action)
	r.GET("/:noteId/:action/:actionId", noteHandler.Action)

	r.NoRoute(middleware.NoFound(page.WriteError))

	return r
}
