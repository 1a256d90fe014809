// Package metrics exposes Prometheus collectors for quoting activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// QuoteMetrics records pricing and saved-quote activity.
type QuoteMetrics struct {
	priced   *prometheus.CounterVec
	duration prometheus.Histogram
	saved    *prometheus.CounterVec
	value    prometheus.Histogram
}

// NewQuoteMetrics registers the quote metrics on the provided registerer. A nil
// registerer yields a no-op recorder.
func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	if reg == nil {
		return &QuoteMetrics{}
	}
	priced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quotes_priced_total",
		Help: "Orders priced, by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_pricing_duration_seconds",
		Help:    "Time spent pricing one order.",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
	})
	saved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quotes_saved_total",
		Help: "Quote snapshots written, by operation.",
	}, []string{"operation"})
	value := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_total_value",
		Help:    "Total quote value of priced orders.",
		Buckets: prometheus.ExponentialBuckets(100, 2, 12),
	})
	reg.MustRegister(priced, duration, saved, value)
	return &QuoteMetrics{
		priced:   priced,
		duration: duration,
		saved:    saved,
		value:    value,
	}
}

// ObservePriced records one pricing call. outcome is "ok" or the error kind.
func (m *QuoteMetrics) ObservePriced(outcome string, elapsed time.Duration, totalQuote float64) {
	if m == nil || m.priced == nil {
		return
	}
	m.priced.WithLabelValues(normalizeLabel(outcome)).Inc()
	m.duration.Observe(elapsed.Seconds())
	if outcome == "ok" {
		m.value.Observe(totalQuote)
	}
}

// IncSaved counts a snapshot write ("create", "update", "duplicate", "status", "import").
func (m *QuoteMetrics) IncSaved(operation string) {
	if m == nil || m.saved == nil {
		return
	}
	m.saved.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
