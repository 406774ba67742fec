// Package metrics exposes orbita's Prometheus instruments.
//
// Every method is safe on a nil *Metrics so components can run without
// instrumentation in tests.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tick stages reported on orbita_tick_errors_total.
const (
	StageSource    = "source"
	StageTelemetry = "telemetry"
	StageDecision  = "decision"
	StagePanic     = "panic"
)

// Metrics holds the instruments registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	ticks             *prometheus.CounterVec
	anomalies         *prometheus.CounterVec
	tickErrors        *prometheus.CounterVec
	activeLoops       prometheus.Gauge
	subscribers       prometheus.Gauge
	broadcastFailures prometheus.Counter
}

// New creates and registers all instruments.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orbita_ticks_total",
			Help: "Mission loop ticks completed, by vehicle class.",
		}, []string{"vehicle_class"}),
		anomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orbita_anomalies_total",
			Help: "Anomalous assessments, by first detected pattern.",
		}, []string{"pattern"}),
		tickErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orbita_tick_errors_total",
			Help: "Per-tick failures that were logged and skipped, by stage.",
		}, []string{"stage"}),
		activeLoops: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orbita_active_loops",
			Help: "Mission loops currently running.",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orbita_subscribers",
			Help: "Live observers currently subscribed across all missions.",
		}),
		broadcastFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orbita_broadcast_failures_total",
			Help: "Live-update deliveries that failed and were dropped.",
		}),
	}

	m.registry.MustRegister(
		m.ticks, m.anomalies, m.tickErrors,
		m.activeLoops, m.subscribers, m.broadcastFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the gatherer backing Handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) TickCompleted(vehicleClass string) {
	if m == nil {
		return
	}
	m.ticks.WithLabelValues(vehicleClass).Inc()
}

func (m *Metrics) AnomalyDetected(pattern string) {
	if m == nil {
		return
	}
	m.anomalies.WithLabelValues(pattern).Inc()
}

func (m *Metrics) TickError(stage string) {
	if m == nil {
		return
	}
	m.tickErrors.WithLabelValues(stage).Inc()
}

func (m *Metrics) LoopStarted() {
	if m == nil {
		return
	}
	m.activeLoops.Inc()
}

func (m *Metrics) LoopStopped() {
	if m == nil {
		return
	}
	m.activeLoops.Dec()
}

func (m *Metrics) SubscriberAdded() {
	if m == nil {
		return
	}
	m.subscribers.Inc()
}

func (m *Metrics) SubscriberRemoved() {
	if m == nil {
		return
	}
	m.subscribers.Dec()
}

func (m *Metrics) BroadcastFailed() {
	if m == nil {
		return
	}
	m.broadcastFailures.Inc()
}
