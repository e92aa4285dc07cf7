// Package network owns the canonical hydraulic network model: nodes,
// edges, computational parameters and output requests. All mutation goes
// through the Store's operation set; callers only ever see value copies.
package network

import (
	"github.com/surgeworks/hammercad/pkg/units"
)

// NodeKind identifies what a graph node represents in the network.
type NodeKind string

const (
	KindReservoir    NodeKind = "reservoir"
	KindNode         NodeKind = "node"
	KindJunction     NodeKind = "junction"
	KindSurgeTank    NodeKind = "surgeTank"
	KindFlowBoundary NodeKind = "flowBoundary"
)

// IsSpecial reports whether nodes of this kind carry a special element
// (reservoir, surge tank or flow boundary). Special elements are always
// retained in the exported elevation listing.
func (k NodeKind) IsSpecial() bool {
	return k == KindReservoir || k == KindSurgeTank || k == KindFlowBoundary
}

// EdgeKind identifies the hydraulic link type.
type EdgeKind string

const (
	KindConduit EdgeKind = "conduit"
	KindDummy   EdgeKind = "dummy"
)

// labelPrefix returns the per-kind label prefix used for generated
// labels (C1, C2... for conduits, D1... for dummies).
func (k EdgeKind) labelPrefix() string {
	if k == KindDummy {
		return "D"
	}
	return "C"
}

// Position is a node's 2-D canvas position. Position changes are not
// structural and never enter the undo history.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SchedulePoint is one point of a flow boundary's prescribed schedule.
type SchedulePoint struct {
	Time float64 `json:"time"`
	Flow float64 `json:"flow"`
}

// ProfileSample is one sample of a variable-geometry conduit's profile.
type ProfileSample struct {
	Distance float64 `json:"distance"`
	Area     float64 `json:"area"`
	Diameter float64 `json:"diameter"`
}

// NodeData holds a node's label and kind-specific numeric fields.
// Optional numerics are pointers so an absent value is distinguishable
// from zero and can be omitted from export.
type NodeData struct {
	Label string      `json:"label"`
	Unit  *units.Unit `json:"unit,omitempty"` // pins fields to a unit system when set

	// NodeNumber is the externally visible integer identifier; unique
	// among nodes that carry one.
	NodeNumber *int `json:"nodeNumber,omitempty"`

	Elevation      *float64        `json:"elevation,omitempty"`
	TankTop        *float64        `json:"tankTop,omitempty"`
	TankBottom     *float64        `json:"tankBottom,omitempty"`
	Diameter       *float64        `json:"diameter,omitempty"`
	Celerity       *float64        `json:"celerity,omitempty"`
	Friction       *float64        `json:"friction,omitempty"`
	ScheduleNumber *int            `json:"scheduleNumber,omitempty"`
	Schedule       []SchedulePoint `json:"schedule,omitempty"`
	Comment        string          `json:"comment,omitempty"`
}

// EdgeData holds an edge's label, kind and hydraulic fields.
type EdgeData struct {
	Label string      `json:"label"`
	Kind  EdgeKind    `json:"kind"`
	Unit  *units.Unit `json:"unit,omitempty"`

	Length   *float64 `json:"length,omitempty"`
	Diameter *float64 `json:"diameter,omitempty"`
	Celerity *float64 `json:"celerity,omitempty"`
	Friction *float64 `json:"friction,omitempty"`
	Segments *int     `json:"segments,omitempty"`
	CPlus    *float64 `json:"cplus,omitempty"`
	CMinus   *float64 `json:"cminus,omitempty"`

	// Variable marks a variable-geometry conduit whose cross-section is
	// carried by Profile rather than a single diameter.
	Variable bool            `json:"variable,omitempty"`
	Profile  []ProfileSample `json:"profile,omitempty"`
}

// Node is a vertex of the network graph.
type Node struct {
	ID       uint64   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// Edge is a directed hydraulic link between two nodes.
type Edge struct {
	ID     uint64   `json:"id"`
	Source uint64   `json:"source"`
	Target uint64   `json:"target"`
	Data   EdgeData `json:"data"`
}

// ComputationalParams are the scalar simulation control values,
// independent of graph topology.
type ComputationalParams struct {
	DTComp float64 `json:"dtcomp"`
	DTOut  float64 `json:"dtout"`
	TMax   float64 `json:"tmax"`
}

// DefaultParams returns the editor's starting computational parameters.
func DefaultParams() ComputationalParams {
	return ComputationalParams{DTComp: 0.01, DTOut: 0.1, TMax: 20}
}

// ElementType discriminates nodes from edges where either can be
// referenced (deletion, selection, output requests).
type ElementType string

const (
	ElementNode ElementType = "node"
	ElementEdge ElementType = "edge"
)

// RequestType is the kind of telemetry output requested from the engine.
type RequestType string

const (
	RequestHistory     RequestType = "HISTORY"
	RequestPlot        RequestType = "PLOT"
	RequestSpreadsheet RequestType = "SPREADSHEET"
)

// OutputRequest asks the engine to report variables for one element.
// It becomes orphaned, and is pruned, when its element is deleted.
type OutputRequest struct {
	ID          string      `json:"id"`
	ElementID   uint64      `json:"elementId"`
	ElementType ElementType `json:"elementType"`
	RequestType RequestType `json:"requestType"`
	Variables   []string    `json:"variables"`
}

// Snapshot is the aggregate network state: the unit of undo/redo and
// the linearizer's input. Snapshots are deep copies and immutable once
// taken.
type Snapshot struct {
	Nodes      map[uint64]Node     `json:"nodes"`
	Edges      map[uint64]Edge     `json:"edges"`
	Params     ComputationalParams `json:"params"`
	Requests   []OutputRequest     `json:"requests"`
	GlobalUnit units.Unit          `json:"globalUnit"`
	NextNodeID uint64              `json:"nextNodeId"`
	NextEdgeID uint64              `json:"nextEdgeId"`
}

// Clone creates a deep copy of the node.
func (n Node) Clone() Node {
	c := n
	c.Data = n.Data.Clone()
	return c
}

// Clone creates a deep copy of the node's data record.
func (d NodeData) Clone() NodeData {
	c := d
	c.Unit = clonePtr(d.Unit)
	c.NodeNumber = clonePtr(d.NodeNumber)
	c.Elevation = clonePtr(d.Elevation)
	c.TankTop = clonePtr(d.TankTop)
	c.TankBottom = clonePtr(d.TankBottom)
	c.Diameter = clonePtr(d.Diameter)
	c.Celerity = clonePtr(d.Celerity)
	c.Friction = clonePtr(d.Friction)
	c.ScheduleNumber = clonePtr(d.ScheduleNumber)
	if d.Schedule != nil {
		c.Schedule = make([]SchedulePoint, len(d.Schedule))
		copy(c.Schedule, d.Schedule)
	}
	return c
}

// Clone creates a deep copy of the edge.
func (e Edge) Clone() Edge {
	c := e
	c.Data = e.Data.Clone()
	return c
}

// Clone creates a deep copy of the edge's data record.
func (d EdgeData) Clone() EdgeData {
	c := d
	c.Unit = clonePtr(d.Unit)
	c.Length = clonePtr(d.Length)
	c.Diameter = clonePtr(d.Diameter)
	c.Celerity = clonePtr(d.Celerity)
	c.Friction = clonePtr(d.Friction)
	c.Segments = clonePtr(d.Segments)
	c.CPlus = clonePtr(d.CPlus)
	c.CMinus = clonePtr(d.CMinus)
	if d.Profile != nil {
		c.Profile = make([]ProfileSample, len(d.Profile))
		copy(c.Profile, d.Profile)
	}
	return c
}

// Clone creates a deep copy of an output request.
func (r OutputRequest) Clone() OutputRequest {
	c := r
	c.Variables = make([]string, len(r.Variables))
	copy(c.Variables, r.Variables)
	return c
}

// Clone creates a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Nodes = make(map[uint64]Node, len(s.Nodes))
	for id, n := range s.Nodes {
		c.Nodes[id] = n.Clone()
	}
	c.Edges = make(map[uint64]Edge, len(s.Edges))
	for id, e := range s.Edges {
		c.Edges[id] = e.Clone()
	}
	c.Requests = make([]OutputRequest, len(s.Requests))
	for i, r := range s.Requests {
		c.Requests[i] = r.Clone()
	}
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func ptr[T any](v T) *T {
	return &v
}
