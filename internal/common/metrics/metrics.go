package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application
type Registry struct {
	// Designer
	CommandsTotal        *prometheus.CounterVec
	ActiveSessions       prometheus.Gauge
	HistoryDepth         *prometheus.HistogramVec
	SwitchTogglesTotal   prometheus.Counter
	PersistFailuresTotal *prometheus.CounterVec

	// Import
	ImportsTotal          *prometheus.CounterVec
	ImportedElementsTotal *prometheus.CounterVec
	ImportSkippedTotal    prometheus.Counter

	// Share
	ShareBlobBytes prometheus.Histogram

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	r := &Registry{
		registry: reg,
	}
	r.initDesignerMetrics()
	r.initImportMetrics()
	return r
}

func (r *Registry) initDesignerMetrics() {
	r.CommandsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuitee_commands_total",
			Help: "Total number of dispatched designer commands",
		},
		[]string{"command", "result"}, // ok, error
	)

	r.ActiveSessions = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "circuitee_active_sessions",
			Help: "Number of live design sessions",
		},
	)

	r.HistoryDepth = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "circuitee_history_depth",
			Help:    "Undo/redo stack depth observed after each command",
			Buckets: []float64{0, 1, 5, 10, 25, 50},
		},
		[]string{"stack"}, // undo, redo
	)

	r.SwitchTogglesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "circuitee_switch_toggles_total",
			Help: "Total number of switch toggles in test mode",
		},
	)

	r.PersistFailuresTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuitee_persist_failures_total",
			Help: "Total number of failed design or floor plan writes",
		},
		[]string{"target"}, // design, floorplan
	)

	r.ShareBlobBytes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "circuitee_share_blob_bytes",
			Help:    "Size of encoded share blobs",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		},
	)
}

func (r *Registry) initImportMetrics() {
	r.ImportsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuitee_imports_total",
			Help: "Total number of CSV imports",
		},
		[]string{"result"}, // ok, parse_error, degenerate
	)

	r.ImportedElementsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuitee_imported_elements_total",
			Help: "Total number of elements created by CSV import",
		},
		[]string{"kind"},
	)

	r.ImportSkippedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "circuitee_import_skipped_total",
			Help: "Total number of CSV records skipped for non-finite coordinates",
		},
	)
}

// ============================================================
// Recorders
// ============================================================

// RecordCommand counts one dispatched command
func (r *Registry) RecordCommand(command string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.CommandsTotal.WithLabelValues(command, result).Inc()
}

// ObserveHistory records the current undo and redo depth
func (r *Registry) ObserveHistory(undo, redo int) {
	r.HistoryDepth.WithLabelValues("undo").Observe(float64(undo))
	r.HistoryDepth.WithLabelValues("redo").Observe(float64(redo))
}

// RecordImport counts an import and the elements it placed per kind
func (r *Registry) RecordImport(result string, points, linears, switches, skipped int) {
	r.ImportsTotal.WithLabelValues(result).Inc()
	r.ImportedElementsTotal.WithLabelValues("light").Add(float64(points))
	r.ImportedElementsTotal.WithLabelValues("linear-light").Add(float64(linears))
	r.ImportedElementsTotal.WithLabelValues("switch").Add(float64(switches))
	r.ImportSkippedTotal.Add(float64(skipped))
}

func (r *Registry) RecordPersistFailure(target string) {
	r.PersistFailuresTotal.WithLabelValues(target).Inc()
}

// Gatherer exposes the underlying prometheus registry
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
