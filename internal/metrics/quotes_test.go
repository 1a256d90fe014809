package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestQuoteMetricsExportsCountersAndHistograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewQuoteMetrics(reg)

	m.ObservePriced("ok", 2*time.Millisecond, 765)
	m.ObservePriced("ok", time.Millisecond, 625)
	m.ObservePriced("EmptyOrder", time.Millisecond, 0)
	m.IncSaved("create")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "quotes_priced_total", "outcome", "ok"); err != nil {
		t.Fatalf("fetch ok: %v", err)
	} else if got != 2 {
		t.Fatalf("expected ok=2, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "quotes_priced_total", "outcome", "EmptyOrder"); err != nil {
		t.Fatalf("fetch error outcome: %v", err)
	} else if got != 1 {
		t.Fatalf("expected EmptyOrder=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "quotes_saved_total", "operation", "create"); err != nil {
		t.Fatalf("fetch saved: %v", err)
	} else if got != 1 {
		t.Fatalf("expected create=1, got %f", got)
	}

	value := findMetricFamily(mfs, "quote_total_value")
	if value == nil {
		t.Fatalf("quote_total_value not exported")
	}
	h := value.GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 2 || h.GetSampleSum() != 1390 {
		t.Fatalf("expected 2 samples summing 1390, got %d / %f", h.GetSampleCount(), h.GetSampleSum())
	}
}

func TestQuoteMetricsNilRegistererIsNoop(t *testing.T) {
	m := NewQuoteMetrics(nil)
	m.ObservePriced("ok", time.Millisecond, 1)
	m.IncSaved("")

	var nilMetrics *QuoteMetrics
	nilMetrics.IncSaved("create")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
