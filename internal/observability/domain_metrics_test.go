package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestObserveQueryCountsByKindAndOutcome(t *testing.T) {
	before := gatheredValue(t, "exoplanet_queries_total", map[string]string{"kind": "metrics_test", "outcome": "error"})

	ObserveQuery("metrics_test", "error", 0, 3*time.Millisecond)
	ObserveQuery("metrics_test", "error", 0, time.Millisecond)

	after := gatheredValue(t, "exoplanet_queries_total", map[string]string{"kind": "metrics_test", "outcome": "error"})
	if after-before != 2 {
		t.Fatalf("queries_total delta = %v, want 2", after-before)
	}
}

func TestObserveIngestTracksTableRows(t *testing.T) {
	ObserveIngest("ok", 42, 10*time.Millisecond)
	if got := gatheredValue(t, "exoplanet_table_rows", nil); got != 42 {
		t.Fatalf("table_rows = %v, want 42", got)
	}

	ObserveIngest("error", 0, time.Millisecond)
	if got := gatheredValue(t, "exoplanet_table_rows", nil); got != 42 {
		t.Fatalf("failed ingest changed table_rows to %v", got)
	}
}

// gatheredValue returns the counter or gauge value of the series matching
// labels, or 0 when the series has not been created yet.
func gatheredValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metrics:
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if want, ok := labels[pair.GetName()]; ok && want != pair.GetValue() {
					continue metrics
				}
			}
			if metric.GetCounter() != nil {
				return metric.GetCounter().GetValue()
			}
			return metric.GetGauge().GetValue()
		}
	}
	return 0
}
