package network

import (
	"fmt"

	"github.com/surgeworks/hammercad/pkg/logging"
	"github.com/surgeworks/hammercad/pkg/pubsub"
	"github.com/surgeworks/hammercad/pkg/units"
)

// AddNode creates a node of the given kind with kind-specific defaults,
// assigns the next unused node number, and generates the default output
// requests for it. The prior state is snapshotted first.
func (s *Store) AddNode(kind NodeKind, pos Position) (Node, error) {
	switch kind {
	case KindReservoir, KindNode, KindJunction, KindSurgeTank, KindFlowBoundary:
	default:
		s.recordMutation("addNode", "error")
		return Node{}, fmt.Errorf("addNode: unknown node kind %q", kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.recordLocked()

	id := s.nextNodeID
	s.nextNodeID++

	num := s.nextNodeNumberLocked()
	node := &Node{
		ID:       id,
		Kind:     kind,
		Position: pos,
		Data:     defaultNodeData(kind, num),
	}

	s.nodes[id] = node
	s.generateRequestsLocked(id, ElementNode)

	s.recordMutation("addNode", "ok")
	s.updateGaugesLocked()
	s.publish(pubsub.TopicGraph, "addNode", id)
	s.log.Debug("node added",
		logging.NodeID(id),
		logging.String("kind", string(kind)),
		logging.Label(node.Data.Label))

	return node.Clone(), nil
}

// nextNodeNumberLocked returns the smallest integer above every node
// number currently in use, starting at 1.
func (s *Store) nextNodeNumberLocked() int {
	max := 0
	for _, n := range s.nodes {
		if n.Data.NodeNumber != nil && *n.Data.NodeNumber > max {
			max = *n.Data.NodeNumber
		}
	}
	return max + 1
}

func defaultNodeData(kind NodeKind, num int) NodeData {
	d := NodeData{NodeNumber: ptr(num)}
	switch kind {
	case KindReservoir:
		d.Label = "HW"
		d.Elevation = ptr(100.0)
	case KindNode:
		d.Label = fmt.Sprintf("N%d", num)
		d.Elevation = ptr(50.0)
	case KindJunction:
		d.Label = fmt.Sprintf("J%d", num)
		d.Elevation = ptr(50.0)
	case KindSurgeTank:
		d.Label = "ST"
		d.TankTop = ptr(120.0)
		d.TankBottom = ptr(80.0)
		d.Diameter = ptr(5.0)
		d.Celerity = ptr(1000.0)
		d.Friction = ptr(0.01)
		// The tank sits at its base elevation in the node listing.
		d.Elevation = ptr(80.0)
	case KindFlowBoundary:
		d.Label = "FB"
		d.ScheduleNumber = ptr(1)
		d.Elevation = ptr(50.0)
	}
	return d
}

// NodeDataPatch carries a partial node-data update. Nil fields are left
// unchanged; ClearUnit drops the per-element unit override.
type NodeDataPatch struct {
	Label          *string
	Unit           *units.Unit
	ClearUnit      bool
	NodeNumber     *int
	Elevation      *float64
	TankTop        *float64
	TankBottom     *float64
	Diameter       *float64
	Celerity       *float64
	Friction       *float64
	ScheduleNumber *int
	Schedule       *[]SchedulePoint
	Comment        *string
}

// UpdateNodeData merges the patch into the node's data record. A node
// number already carried by another node is rejected.
func (s *Store) UpdateNodeData(id uint64, patch NodeDataPatch) (Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		s.recordMutation("updateNodeData", "error")
		return Node{}, nodeErr("UpdateNodeData", id, ErrNodeNotFound)
	}

	if patch.NodeNumber != nil {
		for otherID, other := range s.nodes {
			if otherID == id || other.Data.NodeNumber == nil {
				continue
			}
			if *other.Data.NodeNumber == *patch.NodeNumber {
				s.recordMutation("updateNodeData", "error")
				return Node{}, nodeErr("UpdateNodeData", id, ErrDuplicateNodeNumber)
			}
		}
	}

	s.recordLocked()

	d := &node.Data
	if patch.Label != nil {
		d.Label = *patch.Label
	}
	if patch.ClearUnit {
		d.Unit = nil
	} else if patch.Unit != nil {
		d.Unit = clonePtr(patch.Unit)
	}
	if patch.NodeNumber != nil {
		d.NodeNumber = clonePtr(patch.NodeNumber)
	}
	if patch.Elevation != nil {
		d.Elevation = clonePtr(patch.Elevation)
	}
	if patch.TankTop != nil {
		d.TankTop = clonePtr(patch.TankTop)
	}
	if patch.TankBottom != nil {
		d.TankBottom = clonePtr(patch.TankBottom)
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
	if patch.ScheduleNumber != nil {
		d.ScheduleNumber = clonePtr(patch.ScheduleNumber)
	}
	if patch.Schedule != nil {
		d.Schedule = make([]SchedulePoint, len(*patch.Schedule))
		copy(d.Schedule, *patch.Schedule)
	}
	if patch.Comment != nil {
		d.Comment = *patch.Comment
	}

	s.recordMutation("updateNodeData", "ok")
	s.publish(pubsub.TopicGraph, "updateNodeData", id)

	return node.Clone(), nil
}

// MoveNode updates a node's canvas position. Continuous drags are not
// structural, so no history snapshot is taken.
func (s *Store) MoveNode(id uint64, pos Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return nodeErr("MoveNode", id, ErrNodeNotFound)
	}
	node.Position = pos
	return nil
}

// DeleteElement removes a node or edge. Deleting a node cascades to
// every incident edge; output requests referencing any removed element
// are pruned; a selection pointing at a removed element is cleared.
func (s *Store) DeleteElement(id uint64, et ElementType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch et {
	case ElementNode:
		if _, ok := s.nodes[id]; !ok {
			s.recordMutation("deleteElement", "error")
			return nodeErr("DeleteElement", id, ErrNodeNotFound)
		}
	case ElementEdge:
		if _, ok := s.edges[id]; !ok {
			s.recordMutation("deleteElement", "error")
			return edgeErr("DeleteElement", id, ErrEdgeNotFound)
		}
	default:
		s.recordMutation("deleteElement", "error")
		return ErrUnknownElementType
	}

	s.recordLocked()

	removedEdges := make(map[uint64]bool)
	removedNode := false

	if et == ElementNode {
		for _, eid := range s.outgoing[id] {
			removedEdges[eid] = true
		}
		for _, eid := range s.incoming[id] {
			removedEdges[eid] = true
		}
		for eid := range removedEdges {
			s.removeEdgeLocked(eid)
		}
		delete(s.nodes, id)
		delete(s.outgoing, id)
		delete(s.incoming, id)
		removedNode = true
	} else {
		removedEdges[id] = true
		s.removeEdgeLocked(id)
	}

	s.pruneRequestsLocked(id, removedNode, removedEdges)

	if s.hasSelection {
		if (s.selectedType == ElementNode && removedNode && s.selectedID == id) ||
			(s.selectedType == ElementEdge && removedEdges[s.selectedID]) {
			s.hasSelection = false
		}
	}

	s.recordMutation("deleteElement", "ok")
	s.updateGaugesLocked()
	s.publish(pubsub.TopicGraph, "deleteElement", id)
	s.log.Debug("element deleted",
		logging.Uint64("element_id", id),
		logging.String("element_type", string(et)),
		logging.Count(len(removedEdges)))

	return nil
}

// pruneRequestsLocked drops output requests that reference a deleted
// node or any deleted edge.
func (s *Store) pruneRequestsLocked(nodeID uint64, nodeRemoved bool, removedEdges map[uint64]bool) {
	kept := s.requests[:0]
	for _, r := range s.requests {
		orphaned := (r.ElementType == ElementNode && nodeRemoved && r.ElementID == nodeID) ||
			(r.ElementType == ElementEdge && removedEdges[r.ElementID])
		if !orphaned {
			kept = append(kept, r)
		}
	}
	s.requests = kept
}
