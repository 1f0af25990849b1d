// Package metric exposes operational metrics for sync and admin operations.
// Metrics live on a private prometheus registry so tests and embedders never
// collide with the default global one.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains all directory-level metrics.
type Metrics struct {
	// Sync metrics
	DocumentsLoaded    prometheus.Counter
	DocumentsSkipped   *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	SnapshotWrites     prometheus.Counter
	BackupsWritten     prometheus.Counter

	// Registry state
	LiveSections prometheus.Gauge
	LiveFields   prometheus.Gauge
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		DocumentsLoaded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "memberdir",
				Subsystem: "sync",
				Name:      "documents_loaded_total",
				Help:      "Total number of section documents promoted to the live snapshot",
			},
		),
		DocumentsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "memberdir",
				Subsystem: "sync",
				Name:      "documents_skipped_total",
				Help:      "Total number of section documents rejected during sync",
			},
			[]string{"kind"},
		),
		ValidationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "memberdir",
				Subsystem: "validation",
				Name:      "failures_total",
				Help:      "Total number of validation failures by failure class",
			},
			[]string{"kind"},
		),
		SnapshotWrites: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "memberdir",
				Subsystem: "storage",
				Name:      "snapshot_writes_total",
				Help:      "Total number of snapshot persist operations",
			},
		),
		BackupsWritten: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "memberdir",
				Subsystem: "storage",
				Name:      "backups_written_total",
				Help:      "Total number of pre-write section backups",
			},
		),
		LiveSections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "memberdir",
				Subsystem: "registry",
				Name:      "live_sections",
				Help:      "Number of sections in the live snapshot",
			},
		),
		LiveFields: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "memberdir",
				Subsystem: "registry",
				Name:      "live_fields",
				Help:      "Number of content fields across the live snapshot",
			},
		),
	}
}

// Registry bundles the directory metrics with their prometheus registry.
type Registry struct {
	prometheusRegistry *prometheus.Registry
	Metrics            *Metrics
}

// NewRegistry creates a registry with all directory metrics plus Go runtime
// collectors registered.
func NewRegistry() *Registry {
	prometheusRegistry := prometheus.NewRegistry()

	m := NewMetrics()
	prometheusRegistry.MustRegister(
		m.DocumentsLoaded,
		m.DocumentsSkipped,
		m.ValidationFailures,
		m.SnapshotWrites,
		m.BackupsWritten,
		m.LiveSections,
		m.LiveFields,
	)

	prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Registry{
		prometheusRegistry: prometheusRegistry,
		Metrics:            m,
	}
}

// Handler returns an http.Handler serving the registry in the prometheus
// exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.prometheusRegistry, promhttp.HandlerOpts{})
}
