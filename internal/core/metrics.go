package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	created        *prometheus.CounterVec
	skipped        *prometheus.CounterVec
	conflicts      prometheus.Counter
	importsActive  prometheus.Gauge
	importDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with registry.
// A nil registry yields working but unregistered collectors.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		created: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certvault_certificates_created_total",
			Help: "Certificates written, by entry point",
		}, []string{"source"}),
		skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certvault_import_items_skipped_total",
			Help: "Bulk import items left out, by reason",
		}, []string{"reason"}),
		conflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "certvault_duplicate_conflicts_total",
			Help: "Writes rejected by the storage uniqueness constraint after passing the pre-check",
		}),
		importsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "certvault_imports_active",
			Help: "Bulk imports currently running",
		}),
		importDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "certvault_import_duration_seconds",
			Help:    "Wall time of bulk imports that reached the store",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
