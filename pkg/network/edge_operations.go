package network

import (
	"fmt"

	"github.com/surgeworks/hammercad/pkg/logging"
	"github.com/surgeworks/hammercad/pkg/pubsub"
	"github.com/surgeworks/hammercad/pkg/units"
)

// AddEdge creates a conduit between two existing nodes with default
// hydraulic fields and a generated label. Self-loops are permitted;
// the linearizer's visited-edge set keeps them from recursing.
func (s *Store) AddEdge(source, target uint64) (Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[source]; !ok {
		s.recordMutation("addEdge", "error")
		return Edge{}, nodeErr("AddEdge", source, ErrNodeNotFound)
	}
	if _, ok := s.nodes[target]; !ok {
		s.recordMutation("addEdge", "error")
		return Edge{}, nodeErr("AddEdge", target, ErrNodeNotFound)
	}

	s.recordLocked()

	id := s.nextEdgeID
	s.nextEdgeID++

	label := fmt.Sprintf("%s%d", KindConduit.labelPrefix(), s.countEdgesOfKindLocked(KindConduit, 0)+1)
	edge := &Edge{
		ID:     id,
		Source: source,
		Target: target,
		Data: EdgeData{
			Label:    label,
			Kind:     KindConduit,
			Length:   ptr(1000.0),
			Diameter: ptr(0.5),
			Celerity: ptr(1000.0),
			Friction: ptr(0.02),
			Segments: ptr(5),
		},
	}

	s.edges[id] = edge
	s.outgoing[source] = append(s.outgoing[source], id)
	s.incoming[target] = append(s.incoming[target], id)

	s.generateRequestsLocked(id, ElementEdge)

	s.recordMutation("addEdge", "ok")
	s.updateGaugesLocked()
	s.publish(pubsub.TopicGraph, "addEdge", id)
	s.log.Debug("edge added",
		logging.EdgeID(id),
		logging.Label(label),
		logging.Uint64("source", source),
		logging.Uint64("target", target))

	return edge.Clone(), nil
}

// countEdgesOfKindLocked counts edges of a kind, excluding the edge
// with the given ID (zero excludes nothing).
func (s *Store) countEdgesOfKindLocked(kind EdgeKind, excludeID uint64) int {
	n := 0
	for id, e := range s.edges {
		if id == excludeID {
			continue
		}
		if e.Data.Kind == kind {
			n++
		}
	}
	return n
}

// EdgeDataPatch carries a partial edge-data update. Nil fields are left
// unchanged.
type EdgeDataPatch struct {
	Label     *string
	Kind      *EdgeKind
	Unit      *units.Unit
	ClearUnit bool
	Length    *float64
	Diameter  *float64
	Celerity  *float64
	Friction  *float64
	Segments  *int
	CPlus     *float64
	CMinus    *float64
	Variable  *bool
	Profile   *[]ProfileSample
}

// UpdateEdgeData merges the patch into the edge's data record. When the
// kind changes, the label is regenerated from the count of existing
// edges of the new kind (excluding this one) with the kind's prefix.
func (s *Store) UpdateEdgeData(id uint64, patch EdgeDataPatch) (Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	edge, ok := s.edges[id]
	if !ok {
		s.recordMutation("updateEdgeData", "error")
		return Edge{}, edgeErr("UpdateEdgeData", id, ErrEdgeNotFound)
	}

	s.recordLocked()

	d := &edge.Data
	if patch.Kind != nil && *patch.Kind != d.Kind {
		d.Kind = *patch.Kind
		d.Label = fmt.Sprintf("%s%d", d.Kind.labelPrefix(), s.countEdgesOfKindLocked(d.Kind, id)+1)
	}
	if patch.Label != nil {
		d.Label = *patch.Label
	}
	if patch.ClearUnit {
		d.Unit = nil
	} else if patch.Unit != nil {
		d.Unit = clonePtr(patch.Unit)
	}
	if patch.Length != nil {
		d.Length = clonePtr(patch.Length)
	}
	if patch.Diameter != nil {
		d.Diameter = clonePtr(patch.Diameter)
	}
	if patch.Celerity != nil {
		d.Celerity = clonePtr(patch.Celerity)
	}
	if patch.Friction != nil {
		d.Friction = clonePtr(patch.Friction)
	}
	if patch.Segments != nil {
		d.Segments = clonePtr(patch.Segments)
	}
	if patch.CPlus != nil {
		d.CPlus = clonePtr(patch.CPlus)
	}
	if patch.CMinus != nil {
		d.CMinus = clonePtr(patch.CMinus)
	}
	if patch.Variable != nil {
		d.Variable = *patch.Variable
	}
	if patch.Profile != nil {
		d.Profile = make([]ProfileSample, len(*patch.Profile))
		copy(d.Profile, *patch.Profile)
	}

	s.recordMutation("updateEdgeData", "ok")
	s.publish(pubsub.TopicGraph, "updateEdgeData", id)

	return edge.Clone(), nil
}

// removeEdgeLocked deletes an edge and its adjacency entries.
func (s *Store) removeEdgeLocked(id uint64) {
	edge, ok := s.edges[id]
	if !ok {
		return
	}
	delete(s.edges, id)
	s.outgoing[edge.Source] = removeID(s.outgoing[edge.Source], id)
	s.incoming[edge.Target] = removeID(s.incoming[edge.Target], id)
}

func removeID(ids []uint64, id uint64) []uint64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
