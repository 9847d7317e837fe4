package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 服务层 prometheus 指标
type Metrics struct {
	RevisionSnapshotFailures prometheus.Counter
	MirrorWriteFailures      prometheus.Counter
	NotesCreated             *prometheus.CounterVec
	NoteViews                *prometheus.CounterVec
	PDFRenders               *prometheus.CounterVec
	PDFRenderDuration        prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg. A nil reg leaves them
// unregistered, which tests use.
// NewMetrics 创建指标并注册到 reg，reg 为 nil 时不注册
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RevisionSnapshotFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: "hackmd",
			Name:      "revision_snapshot_failures_total",
			Help:      "Revision snapshots that failed while publishing.",
		}),
		MirrorWriteFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: "hackmd",
			Name:      "mirror_write_failures_total",
			Help:      "Failed writes of note content to the file mirror.",
		}),
		NotesCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hackmd",
			Name:      "notes_created_total",
			Help:      "Created notes by origin.",
		}, []string{"origin"}),
		NoteViews: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hackmd",
			Name:      "note_views_total",
			Help:      "Published and slide views.",
		}, []string{"surface"}),
		PDFRenders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hackmd",
			Name:      "pdf_renders_total",
			Help:      "PDF renders by template and outcome.",
		}, []string{"template", "status"}),
		PDFRenderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hackmd",
			Name:      "pdf_render_duration_seconds",
			Help:      "Time spent rendering PDF documents.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
	}
}
