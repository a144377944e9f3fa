package metrics

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, r *Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := r.registry.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if !labelsMatch(metric, labels) {
				continue
			}
			switch {
			case metric.Counter != nil:
				return metric.Counter.GetValue()
			case metric.Gauge != nil:
				return metric.Gauge.GetValue()
			}
		}
	}
	t.Fatalf("Metric %s%v not found", name, labels)
	return 0
}

func labelsMatch(metric *dto.Metric, labels map[string]string) bool {
	got := make(map[string]string, len(metric.Label))
	for _, pair := range metric.Label {
		got[pair.GetName()] = pair.GetValue()
	}
	for k, v := range labels {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestRecordCompute(t *testing.T) {
	r := NewRegistry()

	r.RecordCompute("local", "success", 2*time.Second)
	r.RecordCompute("local", "success", time.Second)
	r.RecordCompute("distributed", "error", time.Second)

	local := counterValue(t, r, "centrality_compute_runs_total",
		map[string]string{"mode": "local", "status": "success"})
	if local != 2 {
		t.Errorf("local success runs = %f, want 2", local)
	}

	failed := counterValue(t, r, "centrality_compute_runs_total",
		map[string]string{"mode": "distributed", "status": "error"})
	if failed != 1 {
		t.Errorf("distributed error runs = %f, want 1", failed)
	}
}

func TestRecordVerification(t *testing.T) {
	r := NewRegistry()

	r.RecordVerification(true, 3.5e-7)
	if v := counterValue(t, r, "centrality_verification_pass", nil); v != 1 {
		t.Errorf("verification pass gauge = %f, want 1", v)
	}
	if v := counterValue(t, r, "centrality_verification_max_abs_diff", nil); v != 3.5e-7 {
		t.Errorf("max abs diff gauge = %f", v)
	}

	r.RecordVerification(false, 0.2)
	if v := counterValue(t, r, "centrality_verification_pass", nil); v != 0 {
		t.Errorf("verification pass gauge after failure = %f, want 0", v)
	}
}

func TestRecordReplication(t *testing.T) {
	r := NewRegistry()

	r.RecordReplication(4096, 50*time.Millisecond)
	if v := counterValue(t, r, "centrality_replication_bytes", nil); v != 4096 {
		t.Errorf("replication bytes = %f, want 4096", v)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	r := NewRegistry()
	if r.Handler() == nil {
		t.Fatal("Handler returned nil")
	}
}
