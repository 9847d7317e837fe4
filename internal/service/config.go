// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import "time"

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	// ServerURL 跳转地址前缀，为空时使用相对路径
	ServerURL       string
	UseCDN          bool
	AllowAnonymous  bool // Anonymous note creation // 是否允许匿名创建笔记
	AllowFreeURL    bool // Create notes for unknown aliases // 访问未知别名时自动创建笔记
	AllowPDFExport  bool
	DocsPath        string // Local root of the file mirror // 文件镜像的本地根目录
	DefaultNoteBody string // Body of new notes after the marker // 新笔记标记行之后的正文
	OAuthStateTTL   time.Duration
	PDF             PDFServiceConfig
}

// PDFServiceConfig PDF 导出配置
type PDFServiceConfig struct {
	TemplatePath string // Directory with pdf.css, <action>.css and <action>_header.html // 模板目录
	DPI          int
	MarginTop    float64 // Default top margin in cm // 默认上边距（厘米）
	// MarginTopByTemplate 按模板 id 覆盖上边距，例如 NextEvent: 4.75
	MarginTopByTemplate map[string]float64
	MarginBottom        float64
	MarginLeft          float64
	MarginRight         float64
	RenderTimeout       time.Duration
}

// DefaultServiceConfig 返回默认服务配置
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		AllowAnonymous:  true,
		DocsPath:        "storage/docs",
		DefaultNoteBody: "Neues Dokument\n===",
		OAuthStateTTL:   10 * time.Minute,
		PDF: PDFServiceConfig{
			TemplatePath:        "templates/pdf",
			DPI:                 600,
			MarginTopByTemplate: map[string]float64{"NextEvent": 4.75, "nexbyte": 3},
			MarginBottom:        1.5,
			RenderTimeout:       60 * time.Second,
		},
	}
}

// redirectURL 为路径加上 ServerURL 前缀
func (c *ServiceConfig) redirectURL(p string) string {
	return c.ServerURL + p
}
