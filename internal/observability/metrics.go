package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ProvisionRequests *prometheus.CounterVec
	PlatformCalls     *prometheus.CounterVec
	PlatformLatency   *prometheus.HistogramVec
	OrphanedRooms     prometheus.Counter
	ProvisionLatency  prometheus.Histogram

	stages *StageWindow
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ProvisionRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provision_requests_total",
			Help:      "Provisioning requests by outcome.",
		}, []string{"outcome"}),
		PlatformCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "platform_calls_total",
			Help:      "Platform calls by operation and result class.",
		}, []string{"op", "result"}),
		PlatformLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "platform_call_latency_ms",
			Help:      "Platform call latency in milliseconds.",
			Buckets:   []float64{25, 50, 100, 200, 400, 800, 1600, 3200},
		}, []string{"op"}),
		OrphanedRooms: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphaned_rooms_total",
			Help:      "Rooms created for requests that were then rejected.",
		}),
		ProvisionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provision_latency_ms",
			Help:      "End-to-end provisioning latency in milliseconds.",
			Buckets:   []float64{100, 200, 400, 800, 1200, 2000, 4000, 8000},
		}),
		stages: NewStageWindow(256),
	}
}

// ObservePlatformCall records one platform call. result is "ok" or an error class.
func (m *Metrics) ObservePlatformCall(op, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.PlatformCalls.WithLabelValues(op, result).Inc()
	m.PlatformLatency.WithLabelValues(op).Observe(float64(d.Milliseconds()))
	if result == "ok" {
		m.stages.Observe(op, durationMS(d))
	}
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stages.Observe(stage, durationMS(d))
}

func (m *Metrics) ObserveProvision(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ProvisionRequests.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		m.ProvisionLatency.Observe(float64(d.Milliseconds()))
		m.stages.Observe("provision_total", durationMS(d))
	}
}

func (m *Metrics) ObserveOrphanedRoom() {
	if m == nil {
		return
	}
	m.OrphanedRooms.Inc()
	m.stages.ObserveIndicator("orphaned_room")
}

func (m *Metrics) SnapshotStages() StageSnapshot {
	if m == nil {
		return StageSnapshot{}
	}
	return m.stages.Snapshot()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
