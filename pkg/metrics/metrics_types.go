// Package metrics exposes prometheus instrumentation for the editor
// core: mutation counters, graph size gauges, history and export
// activity. The registry is in-process; no exposition endpoint is wired
// here.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the editor.
type Registry struct {
	// Graph store metrics
	GraphNodesTotal    prometheus.Gauge
	GraphEdgesTotal    prometheus.Gauge
	MutationsTotal     *prometheus.CounterVec // labels: operation, status
	OutputRequestsOpen prometheus.Gauge

	// History metrics
	UndosTotal   prometheus.Counter
	RedosTotal   prometheus.Counter
	HistoryDepth prometheus.Gauge

	// Export metrics
	ExportsTotal   *prometheus.CounterVec // label: status
	ExportDuration prometheus.Histogram
	ExportBytes    prometheus.Histogram

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// NewRegistry creates a Registry backed by its own prometheus registry,
// so tests can create isolated instances.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initGraphMetrics()
	r.initHistoryMetrics()
	r.initExportMetrics()
	return r
}

// Default returns the process-wide registry.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Gatherer exposes the underlying prometheus registry for callers that
// wire their own exposition.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
