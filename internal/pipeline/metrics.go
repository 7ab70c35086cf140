package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts pipeline outcomes for the diagnostics endpoint.
type Metrics struct {
	documents *prometheus.CounterVec
	rows      prometheus.Counter
	duration  prometheus.Histogram
}

// NewMetrics registers the pipeline collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "termsheet_documents_total",
			Help: "Documents processed, by detected issuer and outcome.",
		}, []string{"issuer", "outcome"}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "termsheet_rows_appended_total",
			Help: "Rows appended to the output sink.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "termsheet_run_duration_seconds",
			Help:    "End-to-end duration of one document run.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.documents, m.rows, m.duration)
	}
	return m
}

func (m *Metrics) observeRun(issuer, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(issuer, outcome).Inc()
	m.duration.Observe(seconds)
}

func (m *Metrics) rowAppended() {
	if m == nil {
		return
	}
	m.rows.Inc()
}
