package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Turn outcomes.
const (
	OutcomeReport   = "report"
	OutcomeNoData   = "no_data"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
	OutcomeEmpty    = "empty"
	OutcomePDF      = "pdf"
)

// Pipeline stages.
const (
	StageTranslate = "translate"
	StageExecute   = "execute"
	StageRenderPDF = "render_pdf"
)

var (
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendai_turns_total",
			Help: "Chat turns handled, by outcome",
		},
		[]string{"outcome"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "attendai_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	PDFBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "attendai_pdf_bytes",
			Help:    "Size of rendered PDF reports",
			Buckets: prometheus.ExponentialBuckets(2048, 2, 12),
		},
	)

	HTTPPanics = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "attendai_http_panics_total",
			Help: "Requests that panicked and were recovered",
		},
	)

	SQLRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "attendai_sql_rejected_total",
			Help: "Generated statements rejected before execution",
		},
	)
)
