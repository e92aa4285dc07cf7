package network

import (
	"sort"
	"sync"

	"github.com/surgeworks/hammercad/pkg/history"
	"github.com/surgeworks/hammercad/pkg/logging"
	"github.com/surgeworks/hammercad/pkg/metrics"
	"github.com/surgeworks/hammercad/pkg/pubsub"
	"github.com/surgeworks/hammercad/pkg/units"
)

// Store is the single owner of the network model. All mutation goes
// through its operation set; callers receive value copies, never
// references into the store's internals.
type Store struct {
	mu sync.RWMutex

	nodes map[uint64]*Node
	edges map[uint64]*Edge

	// Adjacency, node ID -> edge IDs
	outgoing map[uint64][]uint64
	incoming map[uint64][]uint64

	params   ComputationalParams
	requests []OutputRequest

	nextNodeID uint64
	nextEdgeID uint64

	globalUnit units.Unit

	// Selection is pointer-like UI state with no ownership semantics.
	selectedID   uint64
	selectedType ElementType
	hasSelection bool

	hist *history.History[Snapshot]

	log logging.Logger
	reg *metrics.Registry
	bus *pubsub.Bus
}

// Options configures a Store. Zero-value fields fall back to defaults:
// nop logger, no metrics, no bus, default history capacity and params.
type Options struct {
	Logger          logging.Logger
	Metrics         *metrics.Registry
	Bus             *pubsub.Bus
	HistoryCapacity int
	GlobalUnit      units.Unit
	Params          ComputationalParams
}

// NewStore creates an empty network store.
func NewStore(opts Options) *Store {
	log := opts.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	params := opts.Params
	if params == (ComputationalParams{}) {
		params = DefaultParams()
	}
	return &Store{
		nodes:      make(map[uint64]*Node),
		edges:      make(map[uint64]*Edge),
		outgoing:   make(map[uint64][]uint64),
		incoming:   make(map[uint64][]uint64),
		params:     params,
		requests:   make([]OutputRequest, 0),
		nextNodeID: 1,
		nextEdgeID: 1,
		globalUnit: opts.GlobalUnit,
		hist:       history.New[Snapshot](opts.HistoryCapacity),
		log:        log.With(logging.Component("network")),
		reg:        opts.Metrics,
		bus:        opts.Bus,
	}
}

// CurrentSnapshot returns a deep copy of the full network state.
func (s *Store) CurrentSnapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Nodes:      make(map[uint64]Node, len(s.nodes)),
		Edges:      make(map[uint64]Edge, len(s.edges)),
		Params:     s.params,
		Requests:   make([]OutputRequest, len(s.requests)),
		GlobalUnit: s.globalUnit,
		NextNodeID: s.nextNodeID,
		NextEdgeID: s.nextEdgeID,
	}
	for id, n := range s.nodes {
		snap.Nodes[id] = n.Clone()
	}
	for id, e := range s.edges {
		snap.Edges[id] = e.Clone()
	}
	for i, r := range s.requests {
		snap.Requests[i] = r.Clone()
	}
	return snap
}

func (s *Store) restoreLocked(snap Snapshot) {
	s.nodes = make(map[uint64]*Node, len(snap.Nodes))
	s.edges = make(map[uint64]*Edge, len(snap.Edges))
	s.outgoing = make(map[uint64][]uint64)
	s.incoming = make(map[uint64][]uint64)
	for id, n := range snap.Nodes {
		c := n.Clone()
		s.nodes[id] = &c
	}
	for id, e := range snap.Edges {
		c := e.Clone()
		s.edges[id] = &c
		s.outgoing[e.Source] = append(s.outgoing[e.Source], id)
		s.incoming[e.Target] = append(s.incoming[e.Target], id)
	}
	s.requests = make([]OutputRequest, len(snap.Requests))
	for i, r := range snap.Requests {
		s.requests[i] = r.Clone()
	}
	s.params = snap.Params
	s.globalUnit = snap.GlobalUnit
	s.nextNodeID = snap.NextNodeID
	s.nextEdgeID = snap.NextEdgeID

	// Selection may now dangle; drop it if so.
	if s.hasSelection && !s.elementExistsLocked(s.selectedID, s.selectedType) {
		s.hasSelection = false
	}
}

// recordLocked pushes the current state onto the undo stack. Called
// before every significant mutation; position-only changes skip it.
func (s *Store) recordLocked() {
	s.hist.Record(s.snapshotLocked())
	if s.reg != nil {
		past, _ := s.hist.Depth()
		s.reg.SetHistoryDepth(past)
	}
}

// Undo restores the state preceding the last significant mutation.
// Returns false when the history is exhausted; that is a no-op.
func (s *Store) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	restored, ok := s.hist.Undo(s.snapshotLocked())
	if !ok {
		return false
	}
	s.restoreLocked(restored)

	if s.reg != nil {
		past, _ := s.hist.Depth()
		s.reg.RecordUndo(past)
		s.reg.SetGraphSize(len(s.nodes), len(s.edges))
		s.reg.SetOutputRequests(len(s.requests))
	}
	s.publish(pubsub.TopicHistory, "undo", 0)
	s.log.Debug("undo applied")
	return true
}

// Redo restores the state undone by the last Undo.
func (s *Store) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	restored, ok := s.hist.Redo(s.snapshotLocked())
	if !ok {
		return false
	}
	s.restoreLocked(restored)

	if s.reg != nil {
		past, _ := s.hist.Depth()
		s.reg.RecordRedo(past)
		s.reg.SetGraphSize(len(s.nodes), len(s.edges))
		s.reg.SetOutputRequests(len(s.requests))
	}
	s.publish(pubsub.TopicHistory, "redo", 0)
	s.log.Debug("redo applied")
	return true
}

// CanUndo reports whether an undo would change state.
func (s *Store) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hist.CanUndo()
}

// CanRedo reports whether a redo would change state.
func (s *Store) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hist.CanRedo()
}

// LoadSnapshot replaces the entire model, e.g. after opening a project
// file. The replaced state remains reachable through undo.
func (s *Store) LoadSnapshot(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recordLocked()
	s.restoreLocked(snap.Clone())
	s.updateGaugesLocked()
	s.publish(pubsub.TopicGraph, "load", 0)
	s.log.Info("snapshot loaded",
		logging.Count(len(s.nodes)),
		logging.UnitSystem(s.globalUnit.String()))
}

// Params returns the computational parameters.
func (s *Store) Params() ComputationalParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// SetParams replaces the computational parameters. All three values
// must be positive.
func (s *Store) SetParams(p ComputationalParams) error {
	if p.DTComp <= 0 || p.DTOut <= 0 || p.TMax <= 0 {
		return ErrInvalidParams
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.recordLocked()
	s.params = p
	s.recordMutation("setParams", "ok")
	s.publish(pubsub.TopicGraph, "setParams", 0)
	return nil
}

// GlobalUnit returns the active global unit system.
func (s *Store) GlobalUnit() units.Unit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.globalUnit
}

// SetGlobalUnit switches the global unit system, converting every
// registered dimensional field of every element that does not carry its
// own unit override. Pinned elements are untouched. The swap is atomic:
// conversion happens on cloned records which are committed together.
func (s *Store) SetGlobalUnit(u units.Unit) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u == s.globalUnit {
		return
	}

	s.recordLocked()
	old := s.globalUnit

	converted := make(map[uint64]*Node, len(s.nodes))
	for id, n := range s.nodes {
		c := n.Clone()
		if c.Data.Unit == nil {
			c.Data.convertUnits(old, u)
		}
		converted[id] = &c
	}
	convertedEdges := make(map[uint64]*Edge, len(s.edges))
	for id, e := range s.edges {
		c := e.Clone()
		if c.Data.Unit == nil {
			c.Data.convertUnits(old, u)
		}
		convertedEdges[id] = &c
	}

	s.nodes = converted
	s.edges = convertedEdges
	s.globalUnit = u

	s.recordMutation("setGlobalUnit", "ok")
	s.publish(pubsub.TopicGraph, "setGlobalUnit", 0)
	s.log.Info("global unit changed",
		logging.UnitSystem(u.String()))
}

// Select marks an element as selected. The element must exist.
func (s *Store) Select(id uint64, et ElementType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.elementExistsLocked(id, et) {
		return ErrElementNotFound
	}
	s.selectedID = id
	s.selectedType = et
	s.hasSelection = true
	return nil
}

// ClearSelection drops the current selection.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasSelection = false
}

// Selection returns the selected element, if any.
func (s *Store) Selection() (uint64, ElementType, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasSelection {
		return 0, "", false
	}
	return s.selectedID, s.selectedType, true
}

func (s *Store) elementExistsLocked(id uint64, et ElementType) bool {
	switch et {
	case ElementNode:
		_, ok := s.nodes[id]
		return ok
	case ElementEdge:
		_, ok := s.edges[id]
		return ok
	default:
		return false
	}
}

// Node returns a copy of the node with the given ID.
func (s *Store) Node(id uint64) (Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id]
	if !ok {
		return Node{}, ErrNodeNotFound
	}
	return n.Clone(), nil
}

// Edge returns a copy of the edge with the given ID.
func (s *Store) Edge(id uint64) (Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.edges[id]
	if !ok {
		return Edge{}, ErrEdgeNotFound
	}
	return e.Clone(), nil
}

// Nodes returns copies of all nodes, ordered by ID.
func (s *Store) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.sortedNodeIDsLocked()
	out := make([]Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.nodes[id].Clone())
	}
	return out
}

// Edges returns copies of all edges, ordered by ID.
func (s *Store) Edges() []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.sortedEdgeIDsLocked()
	out := make([]Edge, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.edges[id].Clone())
	}
	return out
}

// Requests returns copies of all output requests in creation order.
func (s *Store) Requests() []OutputRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]OutputRequest, len(s.requests))
	for i, r := range s.requests {
		out[i] = r.Clone()
	}
	return out
}

func (s *Store) sortedNodeIDsLocked() []uint64 {
	ids := make([]uint64, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Store) sortedEdgeIDsLocked() []uint64 {
	ids := make([]uint64, 0, len(s.edges))
	for id := range s.edges {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Store) recordMutation(op, status string) {
	if s.reg != nil {
		s.reg.RecordMutation(op, status)
	}
}

func (s *Store) updateGaugesLocked() {
	if s.reg != nil {
		s.reg.SetGraphSize(len(s.nodes), len(s.edges))
		s.reg.SetOutputRequests(len(s.requests))
	}
}

func (s *Store) publish(topic, op string, id uint64) {
	if s.bus != nil {
		s.bus.Publish(pubsub.Event{Topic: topic, Op: op, ElementID: id})
	}
}
