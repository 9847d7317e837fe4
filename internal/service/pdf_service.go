package service

import (
	"context"
	"io/fs"
	"strings"
	"time"

	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/pkg/code"
	"github.com/nexbyte/hackmd/pkg/logger"
	"github.com/nexbyte/hackmd/pkg/markdown"
	"github.com/nexbyte/hackmd/pkg/notemeta"
	"github.com/nexbyte/hackmd/pkg/pdf"
	"github.com/nexbyte/hackmd/pkg/workerpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// PDFService exports notes as PDF documents
// PDFService 将笔记导出为 PDF
type PDFService interface {
	// Export renders the note. actionName is the full action segment (pdf, pdf-NextEvent)
	// and selects the style sheet and header template; templateID selects the top margin.
	// Export 渲染笔记，actionName 决定样式与页眉模板，templateID 决定上边距
	Export(ctx context.Context, note *domain.Note, actionName, templateID string) ([]byte, error)
}

type pdfService struct {
	renderer  pdf.Renderer
	pool      *workerpool.Pool
	md        *markdown.Converter
	templates fs.FS // pdf.css, <action>.css, <action>_header.html
	metrics   *Metrics
	logger    *zap.Logger
	config    *PDFServiceConfig
}

// NewPDFService 创建 PDFService 实例
func NewPDFService(renderer pdf.Renderer, pool *workerpool.Pool, md *markdown.Converter, templates fs.FS, metrics *Metrics, logger *zap.Logger, config *PDFServiceConfig) PDFService {
	if config == nil {
		config = &DefaultServiceConfig().PDF
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &pdfService{
		renderer:  renderer,
		pool:      pool,
		md:        md,
		templates: templates,
		metrics:   metrics,
		logger:    logger,
		config:    config,
	}
}

// readTemplate 读取模板文件，不存在或名称非法时返回空
func (s *pdfService) readTemplate(name string) string {
	if s.templates == nil || !fs.ValidPath(name) || strings.Contains(name, "/") {
		return ""
	}
	data, err := fs.ReadFile(s.templates, name)
	if err != nil {
		return ""
	}
	return string(data)
}

// options 根据模板 id 计算页面布局
func (s *pdfService) options(actionName, templateID string) pdf.Options {
	marginTop := s.config.MarginTop
	if mt, ok := s.config.MarginTopByTemplate[templateID]; ok && templateID != "" {
		marginTop = mt
	}
	return pdf.Options{
		DPI:            s.config.DPI,
		MarginTopCM:    marginTop,
		MarginBottomCM: s.config.MarginBottom,
		MarginLeftCM:   s.config.MarginLeft,
		MarginRightCM:  s.config.MarginRight,
		HeaderTemplate: s.readTemplate(actionName + "_header.html"),
	}
}

// document 生成交给渲染器的 HTML
func (s *pdfService) document(note *domain.Note, actionName string) (string, error) {
	extracted := notemeta.Extract(note.Content)
	body, err := s.md.ToHTML(extracted.Markdown)
	if err != nil {
		return "", err
	}

	names := []string{"pdf.css"}
	if actionName+".css" != "pdf.css" {
		names = append(names, actionName+".css")
	}
	var styles []string
	for _, name := range names {
		if css := s.readTemplate(name); css != "" {
			styles = append(styles, css)
		}
	}
	return pdf.Document{
		Title:  notemeta.DecodeTitle(note.Title),
		Body:   body,
		Styles: styles,
	}.HTML()
}

func (s *pdfService) Export(ctx context.Context, note *domain.Note, actionName, templateID string) ([]byte, error) {
	html, err := s.document(note, actionName)
	if err != nil {
		s.logger.Error("PDFService.Export build document failed", zap.String(logger.FieldNoteID, note.ID), zap.Error(err))
		return nil, code.ErrorPDFRenderFailed.WithDetails(err.Error())
	}
	opts := s.options(actionName, templateID)

	var out []byte
	start := time.Now()
	err = s.pool.Submit(ctx, func(ctx context.Context) error {
		if s.config.RenderTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.config.RenderTimeout)
			defer cancel()
		}
		var rerr error
		out, rerr = s.renderer.Render(ctx, html, opts)
		return rerr
	})
	s.metrics.PDFRenderDuration.Observe(time.Since(start).Seconds())

	label := templateID
	if label == "" {
		label = "default"
	}
	switch {
	case err == nil:
		s.metrics.PDFRenders.WithLabelValues(label, "ok").Inc()
		return out, nil
	case errors.Is(err, workerpool.ErrWorkerPoolFull), errors.Is(err, workerpool.ErrWorkerPoolClosed):
		s.metrics.PDFRenders.WithLabelValues(label, "busy").Inc()
		s.logger.Warn("PDFService.Export render queue full", zap.String(logger.FieldNoteID, note.ID))
		return nil, code.ErrorPDFRenderBusy
	default:
		s.metrics.PDFRenders.WithLabelValues(label, "error").Inc()
		s.logger.Error("PDFService.Export render failed",
			zap.String(logger.FieldNoteID, note.ID),
			zap.String(logger.FieldTemplate, templateID),
			zap.Error(err))
		return nil, code.ErrorPDFRenderFailed.WithDetails(err.Error())
	}
}
