// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nexbyte/hackmd/internal/dao"
	"github.com/nexbyte/hackmd/internal/service"
	"github.com/nexbyte/hackmd/pkg/storage"
	"github.com/nexbyte/hackmd/pkg/tracer"
	"github.com/nexbyte/hackmd/pkg/util"
	"github.com/nexbyte/hackmd/pkg/workerpool"
	"github.com/nexbyte/hackmd/pkg/writequeue"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	File     string         `yaml:"-"` // 配置文件路径，不序列化
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	App      AppSettings    `yaml:"app"`
	Security SecurityConfig `yaml:"security"`
	Mirror   storage.Config `yaml:"mirror"`
	PDF      PDFConfig      `yaml:"pdf"`
	GitHub   GitHubConfig   `yaml:"github"`
	GitLab   GitLabConfig   `yaml:"gitlab"`
	OAuth    OAuthConfig    `yaml:"oauth"`
	Redis    RedisConfig    `yaml:"redis"`
	Tracer   tracer.Config  `yaml:"tracer"`
	Task     TaskConfig     `yaml:"task"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"warn"`
	// File 日志文件路径
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" default:":3000"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen 私有 HTTP 监听地址（metrics、pprof），为空时不启动
	PrivateHttpListen string `yaml:"private-http-listen" default:"127.0.0.1:3001"`
	// NewNoteRateLimit 每个 IP 每分钟可创建的笔记数
	NewNoteRateLimit int64 `yaml:"new-note-rate-limit" default:"30"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AuthTokenKey string `yaml:"auth-token-key" default:"hackmd-Auth-Token"`
	TokenExpiry  string `yaml:"token-expiry" default:"365d"` // 支持格式：7d（天）、24h（小时）、30m（分钟）
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型：sqlite、mysql、postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path        string `yaml:"path" default:"storage/database/db.sqlite3"`
	UserName    string `yaml:"username"`
	Password    string `yaml:"password"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Name        string `yaml:"name"`
	TablePrefix string `yaml:"table-prefix"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool   `yaml:"auto-migrate" default:"true"`
	Charset     string `yaml:"charset"`
	ParseTime   bool   `yaml:"parse-time"`
	SSLMode     string `yaml:"ssl-mode"`
	// Replicas 只读副本，格式与主库相同（host、port 以外的字段沿用主库）
	Replicas []string `yaml:"replicas"`
	// MaxIdleConns 最大闲置连接数
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大生命周期
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// AppSettings 应用设置
type AppSettings struct {
	// ServerURL 生成跳转地址时使用的外部地址前缀，为空时使用相对路径
	ServerURL string `yaml:"server-url"`
	// AllowAnonymous 是否允许匿名创建笔记，不设默认值，否则 yaml 中的 false 会被第二次 defaults.Set 覆盖
	AllowAnonymous bool `yaml:"allow-anonymous"`
	// AllowFreeURL 访问不存在的别名时是否自动创建笔记
	AllowFreeURL bool `yaml:"allow-free-url"`
	// AllowPDFExport 是否允许导出 PDF
	AllowPDFExport bool `yaml:"allow-pdf-export"`
	// DocsPath 笔记文件镜像根目录（open、fileexists、createfile 使用）
	DocsPath string `yaml:"docs-path" default:"storage/docs"`
	// TmpPath 临时文件目录
	TmpPath string `yaml:"tmp-path" default:"storage/temp"`
	// DefaultNoteBody 新建笔记的默认正文
	DefaultNoteBody string `yaml:"default-note-body" default:"Neues Dokument\n==="`
	// UseCDN 页面是否从 CDN 加载静态资源
	UseCDN bool `yaml:"use-cdn"`
	// DefaultContextTimeout 默认上下文超时时间（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`

	// Worker Pool 配置（PDF 渲染）
	WorkerPoolMaxWorkers int `yaml:"worker-pool-max-workers" default:"2"`
	WorkerPoolQueueSize  int `yaml:"worker-pool-queue-size" default:"16"`

	// Write Queue 配置（按笔记串行写入）
	WriteQueueCapacity int    `yaml:"write-queue-capacity" default:"100"`
	WriteQueueTimeout  string `yaml:"write-queue-timeout" default:"30s"`
	WriteQueueIdleTime string `yaml:"write-queue-idle-time" default:"10m"`
}

// PDFConfig PDF 导出配置
type PDFConfig struct {
	// TemplatePath CSS 与页眉模板目录
	TemplatePath string `yaml:"template-path" default:"templates/pdf"`
	DPI          int    `yaml:"dpi" default:"600"`
	// MarginTop 默认上边距（厘米），MarginTopByTemplate 按模板覆盖
	MarginTop           float64            `yaml:"margin-top" default:"0"`
	MarginTopByTemplate map[string]float64 `yaml:"margin-top-by-template" default:"{\"NextEvent\":4.75,\"nexbyte\":3}"`
	MarginBottom        float64            `yaml:"margin-bottom" default:"1.5"`
	MarginLeft          float64            `yaml:"margin-left" default:"0"`
	MarginRight         float64            `yaml:"margin-right" default:"0"`
	// RenderTimeout 单次渲染超时
	RenderTimeout string `yaml:"render-timeout" default:"60s"`
	// ExecPath Chrome 可执行文件路径，为空时自动查找
	ExecPath  string `yaml:"exec-path"`
	NoSandbox bool   `yaml:"no-sandbox"`
}

// GitHubConfig GitHub OAuth App 配置
type GitHubConfig struct {
	ClientID     string `yaml:"client-id"`
	ClientSecret string `yaml:"client-secret"`
	WebURL       string `yaml:"web-url" default:"https://github.com"`
	APIURL       string `yaml:"api-url" default:"https://api.github.com"`
}

// GitLabConfig GitLab 配置
type GitLabConfig struct {
	BaseURL string `yaml:"base-url"`
}

// OAuthConfig 外部授权调用配置
type OAuthConfig struct {
	HTTPTimeout string `yaml:"http-timeout" default:"10s"`
	// StateTTL 授权 state 的有效期
	StateTTL string `yaml:"state-ttl" default:"10m"`
}

// RedisConfig Redis 配置，URL 为空时 state 存于进程内存
type RedisConfig struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix" default:"hackmd:state:"`
}

// TaskConfig 后台任务配置
type TaskConfig struct {
	// RevisionKeepVersions 每个笔记保留的版本数，0 表示不清理
	RevisionKeepVersions int `yaml:"revision-keep-versions" default:"100"`
	// RevisionRetention 早于该时间的多余版本才会被清理
	RevisionRetention string `yaml:"revision-retention" default:"30d"`
	// RevisionPruneInterval 版本清理间隔
	RevisionPruneInterval string `yaml:"revision-prune-interval" default:"1h"`
	// StateSweepInterval 过期 state 与限流桶的清理间隔
	StateSweepInterval string `yaml:"state-sweep-interval" default:"5m"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	if err = yaml.Unmarshal(file, c); err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	// 再次设置默认值，填充 YAML 中存在但值为空的字段
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "re-set default config failed")
	}

	return c, realpath, nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}
	if err = os.WriteFile(c.File, data, 0644); err != nil {
		return errors.Wrap(err, "write config file failed")
	}
	return nil
}

// durationOr 解析配置中的时长，失败时返回 fallback
func durationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	if d, err := util.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// GetWorkerPoolConfig 获取 Worker Pool 配置
func (c *AppConfig) GetWorkerPoolConfig() workerpool.Config {
	cfg := workerpool.DefaultConfig()
	if c.App.WorkerPoolMaxWorkers > 0 {
		cfg.MaxWorkers = c.App.WorkerPoolMaxWorkers
	}
	if c.App.WorkerPoolQueueSize > 0 {
		cfg.QueueSize = c.App.WorkerPoolQueueSize
	}
	return cfg
}

// GetWriteQueueConfig 获取 Write Queue 配置
func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	cfg := writequeue.DefaultConfig()
	if c.App.WriteQueueCapacity > 0 {
		cfg.QueueCapacity = c.App.WriteQueueCapacity
	}
	cfg.WriteTimeout = durationOr(c.App.WriteQueueTimeout, cfg.WriteTimeout)
	cfg.IdleTimeout = durationOr(c.App.WriteQueueIdleTime, cfg.IdleTimeout)
	return cfg
}

// GetDatabaseConfig 转换为 DAO 层的数据库配置
func (c *AppConfig) GetDatabaseConfig() dao.DatabaseConfig {
	return dao.DatabaseConfig{
		Type:            c.Database.Type,
		Path:            c.Database.Path,
		UserName:        c.Database.UserName,
		Password:        c.Database.Password,
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		Name:            c.Database.Name,
		TablePrefix:     c.Database.TablePrefix,
		AutoMigrate:     c.Database.AutoMigrate,
		Charset:         c.Database.Charset,
		ParseTime:       c.Database.ParseTime,
		SSLMode:         c.Database.SSLMode,
		Replicas:        c.Database.Replicas,
		MaxIdleConns:    c.Database.MaxIdleConns,
		MaxOpenConns:    c.Database.MaxOpenConns,
		ConnMaxLifetime: durationOr(c.Database.ConnMaxLifetime, 30*time.Minute),
		ConnMaxIdleTime: durationOr(c.Database.ConnMaxIdleTime, 10*time.Minute),
		RunMode:         c.Server.RunMode,
	}
}

// GetTokenExpiry 获取 Token 过期时间
func (c *AppConfig) GetTokenExpiry() time.Duration {
	return durationOr(c.Security.TokenExpiry, 365*24*time.Hour)
}

// GetContextTimeout 请求上下文超时
func (c *AppConfig) GetContextTimeout() time.Duration {
	if c.App.DefaultContextTimeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.App.DefaultContextTimeout) * time.Second
}

// GetPDFRenderTimeout 单次 PDF 渲染超时
func (c *AppConfig) GetPDFRenderTimeout() time.Duration {
	return durationOr(c.PDF.RenderTimeout, 60*time.Second)
}

// GetOAuthHTTPTimeout 外部 HTTP 调用超时
func (c *AppConfig) GetOAuthHTTPTimeout() time.Duration {
	return durationOr(c.OAuth.HTTPTimeout, 10*time.Second)
}

// GetOAuthStateTTL 授权 state 有效期
func (c *AppConfig) GetOAuthStateTTL() time.Duration {
	return durationOr(c.OAuth.StateTTL, 10*time.Minute)
}

// GetRevisionRetention 版本清理的时间阈值
func (c *AppConfig) GetRevisionRetention() time.Duration {
	return durationOr(c.Task.RevisionRetention, 30*24*time.Hour)
}

// GetRevisionPruneInterval 版本清理间隔
func (c *AppConfig) GetRevisionPruneInterval() time.Duration {
	return durationOr(c.Task.RevisionPruneInterval, time.Hour)
}

// GetStateSweepInterval state 清理间隔
func (c *AppConfig) GetStateSweepInterval() time.Duration {
	return durationOr(c.Task.StateSweepInterval, 5*time.Minute)
}

// ServiceConfig 提取服务层需要的配置
func (c *AppConfig) ServiceConfig() *service.ServiceConfig {
	return &service.ServiceConfig{
		ServerURL:       strings.TrimSuffix(c.App.ServerURL, "/"),
		UseCDN:          c.App.UseCDN,
		AllowAnonymous:  c.App.AllowAnonymous,
		AllowFreeURL:    c.App.AllowFreeURL,
		AllowPDFExport:  c.App.AllowPDFExport,
		DocsPath:        c.App.DocsPath,
		DefaultNoteBody: c.App.DefaultNoteBody,
		OAuthStateTTL:   c.GetOAuthStateTTL(),
		PDF: service.PDFServiceConfig{
			TemplatePath:        c.PDF.TemplatePath,
			DPI:                 c.PDF.DPI,
			MarginTop:           c.PDF.MarginTop,
			MarginTopByTemplate: c.PDF.MarginTopByTemplate,
			MarginBottom:        c.PDF.MarginBottom,
			MarginLeft:          c.PDF.MarginLeft,
			MarginRight:         c.PDF.MarginRight,
			RenderTimeout:       c.GetPDFRenderTimeout(),
		},
	}
}
