package events

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	publishLatency    prometheus.Histogram
	errorCount        *prometheus.CounterVec
	eventCount        *prometheus.CounterVec
	activeSubscribers prometheus.Gauge
}

var (
	metricsInstance *metrics
	metricsOnce     sync.Once
	defaultRegistry = prometheus.DefaultRegisterer
)

// newMetrics registers the publisher metrics once per registry; local and
// Redis publishers share them.
func newMetrics() *metrics {
	metricsOnce.Do(func() {
		metricsInstance = &metrics{
			publishLatency: promauto.With(defaultRegistry).NewHistogram(prometheus.HistogramOpts{
				Name:    "feedback_event_publish_duration_seconds",
				Help:    "Time taken to publish feedback events",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			}),
			errorCount: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "feedback_event_errors_total",
				Help: "Total number of feedback event errors",
			}, []string{"operation", "type"}),
			eventCount: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "feedback_events_total",
				Help: "Total number of feedback events by operation and type",
			}, []string{"operation", "type"}),
			activeSubscribers: promauto.With(defaultRegistry).NewGauge(prometheus.GaugeOpts{
				Name: "feedback_event_active_subscribers",
				Help: "Current number of active event subscribers",
			}),
		}
	})
	return metricsInstance
}

// resetMetricsForTesting moves metrics onto a fresh registry.
func resetMetricsForTesting() {
	defaultRegistry = prometheus.NewRegistry()
	metricsInstance = nil
	metricsOnce = sync.Once{}
}
