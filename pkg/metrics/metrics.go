package metrics

import (
	"time"
)

// RecordMutation records a store mutation outcome.
func (r *Registry) RecordMutation(operation, status string) {
	r.MutationsTotal.WithLabelValues(operation, status).Inc()
}

// SetGraphSize updates the node and edge gauges after a mutation.
func (r *Registry) SetGraphSize(nodes, edges int) {
	r.GraphNodesTotal.Set(float64(nodes))
	r.GraphEdgesTotal.Set(float64(edges))
}

// SetOutputRequests updates the open output-request gauge.
func (r *Registry) SetOutputRequests(n int) {
	r.OutputRequestsOpen.Set(float64(n))
}

// RecordUndo records an applied undo and the resulting stack depth.
func (r *Registry) RecordUndo(depth int) {
	r.UndosTotal.Inc()
	r.HistoryDepth.Set(float64(depth))
}

// RecordRedo records an applied redo and the resulting stack depth.
func (r *Registry) RecordRedo(depth int) {
	r.RedosTotal.Inc()
	r.HistoryDepth.Set(float64(depth))
}

// SetHistoryDepth updates the undo-stack depth gauge.
func (r *Registry) SetHistoryDepth(depth int) {
	r.HistoryDepth.Set(float64(depth))
}

// RecordExport records a domain-file emission.
func (r *Registry) RecordExport(status string, duration time.Duration, bytes int) {
	r.ExportsTotal.WithLabelValues(status).Inc()
	r.ExportDuration.Observe(duration.Seconds())
	r.ExportBytes.Observe(float64(bytes))
}
