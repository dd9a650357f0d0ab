package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "noveltycam"

// Metrics holds all monitor metrics
type Metrics struct {
	FramesTotal       *prometheus.CounterVec
	DetectionErrors   prometheus.Counter
	DetectionDuration prometheus.Histogram
	AlertsFired       prometheus.Counter
	AlertsSuppressed  prometheus.Counter
	PersistenceErrors prometheus.Counter
	DeliveryErrors    prometheus.Counter
	BaselineLabels    prometheus.Gauge
	Active            prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a new Metrics instance with its own registry
func New() *Metrics {
	m := &Metrics{
		FramesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames processed, by monitor phase",
		}, []string{"phase"}),
		DetectionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detection_errors_total",
			Help:      "Frames skipped because the detector failed",
		}),
		DetectionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "detection_duration_seconds",
			Help:      "Time spent in the object detector per frame",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		AlertsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_fired_total",
			Help:      "Alerts approved by the throttle and dispatched",
		}),
		AlertsSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_suppressed_total",
			Help:      "Novelty events dropped during cooldown",
		}),
		PersistenceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_persistence_errors_total",
			Help:      "Alerts whose image or log record could not be written",
		}),
		DeliveryErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_delivery_errors_total",
			Help:      "Alerts whose notification failed",
		}),
		BaselineLabels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "baseline_labels",
			Help:      "Number of labels in the baseline",
		}),
		Active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monitor_active",
			Help:      "1 once warm-up is over, 0 during warm-up",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.FramesTotal,
		m.DetectionErrors,
		m.DetectionDuration,
		m.AlertsFired,
		m.AlertsSuppressed,
		m.PersistenceErrors,
		m.DeliveryErrors,
		m.BaselineLabels,
		m.Active,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveDetection records how long one detector call took.
func (m *Metrics) ObserveDetection(d time.Duration) {
	m.DetectionDuration.Observe(d.Seconds())
}

// Handler returns the HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, e.g. for additional collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
