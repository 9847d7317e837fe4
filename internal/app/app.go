// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/nexbyte/hackmd/internal/dao"
	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/internal/service"
	pkgapp "github.com/nexbyte/hackmd/pkg/app"
	"github.com/nexbyte/hackmd/pkg/limiter"
	"github.com/nexbyte/hackmd/pkg/markdown"
	"github.com/nexbyte/hackmd/pkg/notemeta"
	"github.com/nexbyte/hackmd/pkg/oauth"
	"github.com/nexbyte/hackmd/pkg/pdf"
	"github.com/nexbyte/hackmd/pkg/statestore"
	"github.com/nexbyte/hackmd/pkg/storage"
	"github.com/nexbyte/hackmd/pkg/workerpool"
	"github.com/nexbyte/hackmd/pkg/writequeue"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// 并发控制组件
	workerPool    *workerpool.Pool
	writeQueueMgr *writequeue.Manager

	// Repository 层
	NoteRepo     domain.NoteRepository
	RevisionRepo domain.RevisionRepository
	UserRepo     domain.UserRepository

	// Service 层
	RevisionService service.RevisionService
	NoteService     service.NoteService
	ResolverService service.ResolverService
	PDFService      service.PDFService
	OAuthService    service.OAuthService
	FileService     service.FileService
	UserService     service.UserService
	ActionService   service.NoteActionService

	// 基础设施组件
	TokenManager pkgapp.TokenManager
	States       statestore.Store
	Mirror       storage.Storager
	Markdown     *markdown.Converter
	Limiter      *limiter.RouteIPLimiter
	Registry     *prometheus.Registry
	Metrics      *service.Metrics

	// StartTime 容器创建时间
	StartTime time.Time

	// 关闭控制
	shutdownCh chan struct{}
}

// Option 容器可选项
type Option func(*options)

type options struct {
	pdfTemplates fs.FS
	renderer     pdf.Renderer
	states       statestore.Store
}

// WithPDFTemplates sets the template set used when pdf.template-path does not exist.
// WithPDFTemplates 设置 pdf.template-path 不存在时使用的模板
func WithPDFTemplates(fsys fs.FS) Option {
	return func(o *options) { o.pdfTemplates = fsys }
}

// WithPDFRenderer 替换默认的 Chrome 渲染器
func WithPDFRenderer(r pdf.Renderer) Option {
	return func(o *options) { o.renderer = r }
}

// WithStateStore 替换根据 redis 配置创建的 state 存储
func WithStateStore(s statestore.Store) Option {
	return func(o *options) { o.states = s }
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		StartTime:  time.Now(),
		shutdownCh: make(chan struct{}),
	}

	// 每个容器使用独立的 registry，配置热重载重建容器时不会重复注册
	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Metrics = service.NewMetrics(a.Registry)

	// 初始化 Worker Pool
	wpConfig := cfg.GetWorkerPoolConfig()
	a.workerPool = workerpool.New(&wpConfig, logger)

	// 初始化 Write Queue Manager
	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueueMgr = writequeue.New(&wqConfig, logger)

	a.Dao = dao.New(db, cfg.Database.AutoMigrate, logger)

	a.TokenManager = pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey: cfg.Security.AuthTokenKey,
		Issuer:    pkgapp.DefaultTokenIssuer,
		Expiry:    cfg.GetTokenExpiry(),
	})

	// 文件镜像
	mirror, err := storage.NewClient(context.Background(), &cfg.Mirror)
	if err != nil {
		return nil, fmt.Errorf("failed to create mirror storage: %w", err)
	}
	a.Mirror = mirror

	// OAuth state 存储：配置了 redis 时使用 redis，否则保存在进程内存
	switch {
	case o.states != nil:
		a.States = o.states
	case cfg.Redis.URL != "":
		rs, err := statestore.NewRedis(context.Background(), cfg.Redis.URL, cfg.Redis.Prefix)
		if err != nil {
			return nil, fmt.Errorf("failed to connect state store: %w", err)
		}
		a.States = rs
	default:
		a.States = statestore.NewMemory()
	}

	a.Limiter = limiter.NewRouteIPLimiter()
	if cfg.Server.NewNoteRateLimit > 0 {
		a.Limiter.AddBuckets(limiter.BucketRule{
			Key:          "/new",
			FillInterval: time.Minute / time.Duration(cfg.Server.NewNoteRateLimit),
			Capacity:     cfg.Server.NewNoteRateLimit,
			Quantum:      1,
		})
	}

	a.Markdown = markdown.New()

	renderer := o.renderer
	if renderer == nil {
		renderer = pdf.NewChrome(pdf.ChromeConfig{
			ExecPath:  cfg.PDF.ExecPath,
			NoSandbox: cfg.PDF.NoSandbox,
			Timeout:   cfg.GetPDFRenderTimeout(),
		}, logger)
	}

	// 初始化 Repository 层
	a.NoteRepo = dao.NewNoteRepository(a.Dao)
	a.RevisionRepo = dao.NewRevisionRepository(a.Dao)
	a.UserRepo = dao.NewUserRepository(a.Dao)

	svcConfig := cfg.ServiceConfig()
	httpClient := oauth.NewHTTPClient(cfg.GetOAuthHTTPTimeout())

	// 初始化 Service 层（依赖注入）
	a.RevisionService = service.NewRevisionService(a.RevisionRepo, logger)
	a.NoteService = service.NewNoteService(a.NoteRepo, a.RevisionService, a.Mirror, a.writeQueueMgr,
		notemeta.NewParser(a.Markdown), a.Metrics, logger, svcConfig)
	a.ResolverService = service.NewResolverService(a.NoteRepo, a.NoteService, logger, svcConfig)
	a.PDFService = service.NewPDFService(renderer, a.workerPool, a.Markdown,
		pdfTemplates(cfg.PDF.TemplatePath, o.pdfTemplates), a.Metrics, logger, &svcConfig.PDF)
	a.OAuthService = service.NewOAuthService(
		oauth.NewGitHub(oauth.GitHubConfig{
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecret,
			WebURL:       cfg.GitHub.WebURL,
			APIURL:       cfg.GitHub.APIURL,
		}, httpClient),
		oauth.NewGitLab(oauth.GitLabConfig{BaseURL: cfg.GitLab.BaseURL}, httpClient),
		a.States, a.UserRepo, logger, svcConfig)
	a.FileService = service.NewFileService(a.Mirror, logger, svcConfig)
	a.UserService = service.NewUserService(a.UserRepo, a.TokenManager, logger)
	a.ActionService = service.NewNoteActionService(a.ResolverService, a.NoteService, a.RevisionService,
		a.PDFService, a.OAuthService, a.Markdown, logger, svcConfig)

	logger.Info("App container initialized successfully",
		zap.Int("workerPoolMaxWorkers", wpConfig.MaxWorkers),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity),
		zap.String("mirror", cfg.Mirror.Type))

	return a, nil
}

// pdfTemplates 优先使用磁盘上的模板目录，不存在时使用内置模板
func pdfTemplates(dir string, fallback fs.FS) fs.FS {
	if dir != "" {
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			return os.DirFS(dir)
		}
	}
	return fallback
}

// Close 释放应用容器持有的资源
func (a *App) Close() error {
	if a.States != nil {
		if err := a.States.Close(); err != nil {
			a.logger.Warn("state store close error", zap.Error(err))
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 按顺序关闭：Worker Pool -> Write Queue Manager -> State Store 与 Database
// ctx 用于控制关闭超时，如果为 nil 则使用默认 30 秒超时
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("App container shutting down...")

	// 如果没有提供 context，使用默认超时
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	// 标记关闭
	select {
	case <-a.shutdownCh:
		// 已经关闭
		return nil
	default:
		close(a.shutdownCh)
	}

	var errs []error

	// 1. 关闭 Worker Pool（停止接受新的 PDF 渲染，等待进行中的渲染完成）
	if a.workerPool != nil {
		a.logger.Info("Shutting down worker pool...")
		if err := a.workerPool.Shutdown(ctx); err != nil {
			a.logger.Warn("Worker pool shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("worker pool shutdown: %w", err))
		} else {
			a.logger.Info("Worker pool shutdown completed")
		}
	}

	// 2. 关闭 Write Queue Manager（排空所有笔记的写队列）
	if a.writeQueueMgr != nil {
		a.logger.Info("Shutting down write queue manager...")
		if err := a.writeQueueMgr.Shutdown(ctx); err != nil {
			a.logger.Warn("write queue manager shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("write queue manager shutdown: %w", err))
		} else {
			a.logger.Info("write queue manager shutdown completed")
		}
	}

	// 3. 关闭 state 存储与数据库连接
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		a.logger.Warn("App container shutdown completed with errors",
			zap.Int("errorCount", len(errs)))
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}

	a.logger.Info("App container shutdown completed successfully")
	return nil
}

// IsShuttingDown 检查应用是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}
