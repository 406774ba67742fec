package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()

	m.TickCompleted("LEO")
	m.TickCompleted("LEO")
	m.TickCompleted("GEO")
	m.AnomalyDetected("Battery cell impedance anomaly")
	m.TickError(StageTelemetry)
	m.BroadcastFailed()

	if got := testutil.ToFloat64(m.ticks.WithLabelValues("LEO")); got != 2 {
		t.Errorf("LEO ticks = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ticks.WithLabelValues("GEO")); got != 1 {
		t.Errorf("GEO ticks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.tickErrors.WithLabelValues(StageTelemetry)); got != 1 {
		t.Errorf("telemetry errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.broadcastFailures); got != 1 {
		t.Errorf("broadcast failures = %v, want 1", got)
	}
}

func TestGauges(t *testing.T) {
	m := New()

	m.LoopStarted()
	m.LoopStarted()
	m.LoopStopped()
	m.SubscriberAdded()

	if got := testutil.ToFloat64(m.activeLoops); got != 1 {
		t.Errorf("active loops = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.subscribers); got != 1 {
		t.Errorf("subscribers = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.TickCompleted("LEO")
	m.AnomalyDetected("x")
	m.TickError(StagePanic)
	m.LoopStarted()
	m.LoopStopped()
	m.SubscriberAdded()
	m.SubscriberRemoved()
	m.BroadcastFailed()
}

func TestHandler(t *testing.T) {
	m := New()
	m.TickCompleted("MEO")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `orbita_ticks_total{vehicle_class="MEO"} 1`) {
		t.Errorf("exposition missing tick counter:\n%s", body)
	}
}
