package hyfile

import (
	"fmt"
	"sort"

	"github.com/surgeworks/hammercad/pkg/network"
)

// connectivity is the result of linearizing the graph: the ordered
// connectivity lines plus the reference bookkeeping the node
// inclusion/elision rule needs.
type connectivity struct {
	lines []string

	// Per node-number element labels of connectivity references.
	inRefs  map[int][]string
	outRefs map[int][]string

	// Node-numbers carrying a special element or junction marker.
	special map[int]bool

	// Every node-number appearing in the connectivity.
	numbers map[int]bool
}

// nodeNumber resolves a node's externally visible number, falling back
// to its ID when unset.
func nodeNumber(n network.Node) int {
	if n.Data.NodeNumber != nil {
		return *n.Data.NodeNumber
	}
	return int(n.ID)
}

type traversal struct {
	snap     network.Snapshot
	outgoing map[uint64][]uint64 // node ID -> edge IDs, sorted
	visited  map[uint64]bool     // node IDs
	visitedE map[uint64]bool     // edge IDs
	conn     *connectivity
}

// buildConnectivity linearizes the graph into the engine's connectivity
// grammar. Traversal roots are all reservoir nodes; each node and edge
// is visited at most once, which guards against cycles and self-loops.
// Unreached surge-tank and flow-boundary nodes are appended standalone
// so no special element is silently dropped.
func buildConnectivity(snap network.Snapshot) *connectivity {
	tr := &traversal{
		snap:     snap,
		outgoing: make(map[uint64][]uint64),
		visited:  make(map[uint64]bool),
		visitedE: make(map[uint64]bool),
		conn: &connectivity{
			inRefs:  make(map[int][]string),
			outRefs: make(map[int][]string),
			special: make(map[int]bool),
			numbers: make(map[int]bool),
		},
	}

	for _, eid := range sortedEdgeIDs(snap) {
		e := snap.Edges[eid]
		tr.outgoing[e.Source] = append(tr.outgoing[e.Source], eid)
	}

	for _, nid := range sortedNodeIDs(snap) {
		if snap.Nodes[nid].Kind == network.KindReservoir {
			tr.visit(nid)
		}
	}

	// Disconnected special elements still reach the engine.
	for _, nid := range sortedNodeIDs(snap) {
		n := snap.Nodes[nid]
		if tr.visited[nid] {
			continue
		}
		if n.Kind == network.KindSurgeTank || n.Kind == network.KindFlowBoundary {
			num := nodeNumber(n)
			tr.conn.lines = append(tr.conn.lines, fmt.Sprintf("ELEM %s AT %d", n.Data.Label, num))
			tr.conn.special[num] = true
			tr.conn.numbers[num] = true
		}
	}

	return tr.conn
}

func (tr *traversal) visit(nid uint64) {
	if tr.visited[nid] {
		return
	}
	tr.visited[nid] = true

	n, ok := tr.snap.Nodes[nid]
	if !ok {
		return
	}
	num := nodeNumber(n)
	tr.conn.numbers[num] = true

	if n.Kind.IsSpecial() {
		tr.conn.lines = append(tr.conn.lines, fmt.Sprintf("ELEM %s AT %d", n.Data.Label, num))
		tr.conn.special[num] = true
	}

	// A branch point gets a junction marker: either declared as a
	// junction or fanning out into more than one link.
	out := tr.outgoing[nid]
	if n.Kind == network.KindJunction || len(out) > 1 {
		tr.conn.lines = append(tr.conn.lines, fmt.Sprintf("JUNCTION AT %d", num))
		tr.conn.special[num] = true
	}

	for _, eid := range out {
		if tr.visitedE[eid] {
			continue
		}
		tr.visitedE[eid] = true

		e := tr.snap.Edges[eid]
		target, ok := tr.snap.Nodes[e.Target]
		if !ok {
			continue
		}
		toNum := nodeNumber(target)

		tr.conn.lines = append(tr.conn.lines,
			fmt.Sprintf("ELEM %s LINK %d %d", e.Data.Label, num, toNum))
		tr.conn.outRefs[num] = append(tr.conn.outRefs[num], e.Data.Label)
		tr.conn.inRefs[toNum] = append(tr.conn.inRefs[toNum], e.Data.Label)
		tr.conn.numbers[toNum] = true

		tr.visit(e.Target)
	}
}

// includedNumbers applies the elision rule and returns the node-numbers
// retained in the elevation listing, sorted ascending. A number is
// elided only when it is a pure pass-through inside a single element:
// exactly one incoming and one outgoing reference, both carrying the
// same element label, and no special element at the node.
func (c *connectivity) includedNumbers() []int {
	included := make([]int, 0, len(c.numbers))
	for num := range c.numbers {
		if c.special[num] {
			included = append(included, num)
			continue
		}
		in, out := c.inRefs[num], c.outRefs[num]
		if len(in) == 1 && len(out) == 1 && in[0] == out[0] {
			continue
		}
		included = append(included, num)
	}
	sort.Ints(included)
	return included
}

func sortedNodeIDs(snap network.Snapshot) []uint64 {
	ids := make([]uint64, 0, len(snap.Nodes))
	for id := range snap.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedEdgeIDs(snap network.Snapshot) []uint64 {
	ids := make([]uint64, 0, len(snap.Edges))
	for id := range snap.Edges {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
