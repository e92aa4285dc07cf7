package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphNodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "hammercad_graph_nodes_total",
			Help: "Number of nodes in the network model",
		},
	)

	r.GraphEdgesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "hammercad_graph_edges_total",
			Help: "Number of edges in the network model",
		},
	)

	r.MutationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "hammercad_mutations_total",
			Help: "Total number of store mutations",
		},
		[]string{"operation", "status"},
	)

	r.OutputRequestsOpen = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "hammercad_output_requests_open",
			Help: "Number of output requests in the model",
		},
	)
}

func (r *Registry) initHistoryMetrics() {
	r.UndosTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "hammercad_history_undos_total",
			Help: "Total number of undo operations applied",
		},
	)

	r.RedosTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "hammercad_history_redos_total",
			Help: "Total number of redo operations applied",
		},
	)

	r.HistoryDepth = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "hammercad_history_depth",
			Help: "Current depth of the undo stack",
		},
	)
}

func (r *Registry) initExportMetrics() {
	r.ExportsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "hammercad_exports_total",
			Help: "Total number of domain-file exports",
		},
		[]string{"status"},
	)

	r.ExportDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hammercad_export_duration_seconds",
			Help:    "Domain-file emission duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)

	r.ExportBytes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hammercad_export_bytes",
			Help:    "Size of emitted domain files in bytes",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		},
	)
}
