package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rl1809/dental-supply/internal/core/domain"
)

const namespace = "dental_supply"

// Metrics implements port.Metrics on a prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	cycles          *prometheus.CounterVec
	cycleDuration   prometheus.Histogram
	alerts          *prometheus.CounterVec
	skipped         prometheus.Counter
	deliveryFailed  prometheus.Counter
	deliveryDropped prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_cycles_total",
			Help:      "Scan cycles by result.",
		}, []string{"result"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_cycle_duration_seconds",
			Help:      "Wall time of a scan cycle.",
			Buckets:   prometheus.DefBuckets,
		}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_emitted_total",
			Help:      "Alert events emitted by kind.",
		}, []string{"kind"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_skipped_total",
			Help:      "Malformed item records skipped during scans.",
		}),
		deliveryFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_delivery_failures_total",
			Help:      "Failed alert send attempts, retries included.",
		}),
		deliveryDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_deliveries_dropped_total",
			Help:      "Alert deliveries given up after the retry.",
		}),
	}

	m.registry.MustRegister(
		m.cycles, m.cycleDuration, m.alerts, m.skipped, m.deliveryFailed, m.deliveryDropped,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) CycleFinished(result domain.CycleResult, took time.Duration) {
	m.cycles.WithLabelValues(string(result)).Inc()
	m.cycleDuration.Observe(took.Seconds())
}

func (m *Metrics) AlertEmitted(kind domain.AlertKind) {
	m.alerts.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) ItemSkipped()     { m.skipped.Inc() }
func (m *Metrics) DeliveryFailed()  { m.deliveryFailed.Inc() }
func (m *Metrics) DeliveryDropped() { m.deliveryDropped.Inc() }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
