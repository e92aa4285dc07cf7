package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistry_Mutations(t *testing.T) {
	r := NewRegistry()

	r.RecordMutation("addNode", "ok")
	r.RecordMutation("addNode", "ok")
	r.RecordMutation("addEdge", "error")

	if got := testutil.ToFloat64(r.MutationsTotal.WithLabelValues("addNode", "ok")); got != 2 {
		t.Errorf("Expected 2 addNode/ok mutations, got %v", got)
	}
	if got := testutil.ToFloat64(r.MutationsTotal.WithLabelValues("addEdge", "error")); got != 1 {
		t.Errorf("Expected 1 addEdge/error mutation, got %v", got)
	}
}

func TestRegistry_GraphSize(t *testing.T) {
	r := NewRegistry()

	r.SetGraphSize(3, 2)
	if got := testutil.ToFloat64(r.GraphNodesTotal); got != 3 {
		t.Errorf("Expected 3 nodes, got %v", got)
	}
	if got := testutil.ToFloat64(r.GraphEdgesTotal); got != 2 {
		t.Errorf("Expected 2 edges, got %v", got)
	}
}

func TestRegistry_History(t *testing.T) {
	r := NewRegistry()

	r.RecordUndo(4)
	r.RecordRedo(5)

	if got := testutil.ToFloat64(r.UndosTotal); got != 1 {
		t.Errorf("Expected 1 undo, got %v", got)
	}
	if got := testutil.ToFloat64(r.HistoryDepth); got != 5 {
		t.Errorf("Expected history depth 5, got %v", got)
	}
}

func TestRegistry_Export(t *testing.T) {
	r := NewRegistry()

	r.RecordExport("ok", 5*time.Millisecond, 1024)
	if got := testutil.ToFloat64(r.ExportsTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("Expected 1 export, got %v", got)
	}
}

func TestDefault_Singleton(t *testing.T) {
	if Default() != Default() {
		t.Error("Default registry should be a singleton")
	}
}
