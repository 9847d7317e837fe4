// Package pdf turns rendered note HTML into PDF documents.
// Package pdf 将笔记 HTML 渲染为 PDF
package pdf

import (
	"context"
	"math"
)

// A4 纸张尺寸（英寸）
const (
	PaperWidthInch  = 8.27
	PaperHeightInch = 11.69
	cmPerInch       = 2.54
	cssDPI          = 96
)

// Options describes page layout. Margins are in centimetres.
// Options 页面布局，边距单位为厘米
type Options struct {
	DPI            int
	MarginTopCM    float64
	MarginBottomCM float64
	MarginLeftCM   float64
	MarginRightCM  float64
	// HeaderTemplate 页眉 HTML，为空时不显示页眉页脚
	HeaderTemplate string
}

// Renderer 渲染器接口
type Renderer interface {
	Render(ctx context.Context, html string, opts Options) ([]byte, error)
}

// CMToInch 厘米转英寸
func CMToInch(cm float64) float64 {
	return math.Round(cm/cmPerInch*10000) / 10000
}

// ViewportPixels 返回 A4 页面在 CSS 像素下的宽高（96 DPI，四舍五入）
func ViewportPixels() (width, height int64) {
	w, h := PaperWidthInch*float64(cssDPI), PaperHeightInch*float64(cssDPI)
	return int64(math.Round(w)), int64(math.Round(h))
}

// ScaleFactor maps a DPI setting to a device scale factor; images are rasterized at it.
// ScaleFactor 将 DPI 换算为设备缩放比例
func ScaleFactor(dpi int) float64 {
	if dpi <= 0 {
		return 1
	}
	return float64(dpi) / cssDPI
}
