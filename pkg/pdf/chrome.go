package pdf

import (
	"context"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ChromeConfig headless Chrome 配置
type ChromeConfig struct {
	// ExecPath 浏览器路径，为空时由 chromedp 自动查找
	ExecPath string
	NoSandbox bool
	Timeout   time.Duration
}

// Chrome renders through a headless Chrome launched per document.
// Chrome 每次渲染启动一个 headless Chrome
type Chrome struct {
	config ChromeConfig
	logger *zap.Logger
}

func NewChrome(cfg ChromeConfig, logger *zap.Logger) *Chrome {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chrome{config: cfg, logger: logger}
}

func (c *Chrome) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if c.config.NoSandbox {
		opts = append(opts,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-setuid-sandbox", true),
		)
	}
	if c.config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.config.ExecPath))
	}
	return opts
}

// Render 渲染 HTML 为 PDF
func (c *Chrome) Render(ctx context.Context, html string, opts Options) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, c.allocatorOptions()...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	start := time.Now()
	width, height := ViewportPixels()
	var data []byte
	err := chromedp.Run(taskCtx,
		emulation.SetDeviceMetricsOverride(width, height, ScaleFactor(opts.DPI), false),
		chromedp.Navigate("data:text/html;charset=utf-8,"+url.PathEscape(html)),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			data, _, err = printParams(opts).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "pdf: chrome render")
	}

	c.logger.Debug("pdf rendered",
		zap.Int("size", len(data)),
		zap.Duration("duration", time.Since(start)))
	return data, nil
}

func printParams(opts Options) *page.PrintToPDFParams {
	p := page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(PaperWidthInch).
		WithPaperHeight(PaperHeightInch).
		WithMarginTop(CMToInch(opts.MarginTopCM)).
		WithMarginBottom(CMToInch(opts.MarginBottomCM)).
		WithMarginLeft(CMToInch(opts.MarginLeftCM)).
		WithMarginRight(CMToInch(opts.MarginRightCM))
	if opts.HeaderTemplate != "" {
		p = p.WithDisplayHeaderFooter(true).
			WithHeaderTemplate(opts.HeaderTemplate).
			WithFooterTemplate("<span></span>")
	}
	return p
}
