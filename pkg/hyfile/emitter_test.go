package hyfile

import (
	"strconv"
	"strings"
	"testing"

	"github.com/surgeworks/hammercad/pkg/network"
	"github.com/surgeworks/hammercad/pkg/units"
)

func containsLine(t *testing.T, text, line string) {
	t.Helper()
	for _, l := range strings.Split(text, "\n") {
		if l == line {
			return
		}
	}
	t.Errorf("Output missing line %q\n---\n%s", line, text)
}

func lineIndex(text, line string) int {
	for i, l := range strings.Split(text, "\n") {
		if l == line {
			return i
		}
	}
	return -1
}

// A single reservoir linked by one conduit to a surge tank, all at
// editor defaults in SI, must produce the engine file with every value
// converted to feet at two decimals.
func TestEmit_ReservoirConduitSurgeTank(t *testing.T) {
	s := network.NewStore(network.Options{})
	res, _ := s.AddNode(network.KindReservoir, network.Position{})
	tank, _ := s.AddNode(network.KindSurgeTank, network.Position{})
	s.AddEdge(res.ID, tank.ID)

	out := Emit(s.CurrentSnapshot(), units.SI)

	containsLine(t, out, "ELEM HW AT 1")
	containsLine(t, out, "ELEM C1 LINK 1 2")
	containsLine(t, out, "ELEM ST AT 2")

	// Both nodes carry special elements, so neither is elided.
	containsLine(t, out, "NODE 1 ELEV 328.08")
	containsLine(t, out, "NODE 2 ELEV 262.47")

	containsLine(t, out, "RESERVOIR HW")
	containsLine(t, out, "ELEV 328.08")
	containsLine(t, out, "CONDUIT C1")
	containsLine(t, out, "LENGTH 3280.84")
	containsLine(t, out, "DIAM 1.64")
	containsLine(t, out, "SURGETANK ST")
	containsLine(t, out, "ELTOP 393.70")
	containsLine(t, out, "ELBOTTOM 262.47")
}

func TestEmit_SectionOrder(t *testing.T) {
	s := network.NewStore(network.Options{})
	res, _ := s.AddNode(network.KindReservoir, network.Position{})
	tank, _ := s.AddNode(network.KindSurgeTank, network.Position{})
	s.AddEdge(res.ID, tank.ID)

	out := Emit(s.CurrentSnapshot(), units.SI)

	lines := strings.Split(out, "\n")
	if lines[0] != "SYSTEM" {
		t.Errorf("File must open with SYSTEM, got %q", lines[0])
	}
	if !strings.HasSuffix(strings.TrimRight(out, "\n"), "GOODBYE") {
		t.Error("File must end with GOODBYE")
	}

	order := []string{
		"SYSTEM",
		"ELEM HW AT 1",
		"NODE 1 ELEV 328.08",
		"FINISH",
		"RESERVOIR HW",
		"CONDUIT C1",
		"SURGETANK ST",
		"HISTORY",
		"PLOT",
		"SPREADSHEET",
		"DISPLAY ALL",
		"CONTROL",
		"GO",
		"GOODBYE",
	}
	prev := -1
	for _, want := range order {
		idx := lineIndex(out, want)
		if idx < 0 {
			t.Fatalf("Missing section line %q\n---\n%s", want, out)
		}
		if idx <= prev {
			t.Errorf("Line %q out of order (index %d after %d)", want, idx, prev)
		}
		prev = idx
	}
}

func TestEmit_ControlBlock(t *testing.T) {
	s := network.NewStore(network.Options{})
	s.SetParams(network.ComputationalParams{DTComp: 0.05, DTOut: 0.5, TMax: 60})

	out := Emit(s.CurrentSnapshot(), units.SI)

	containsLine(t, out, "DTCOMP 0.05")
	containsLine(t, out, "DTOUT 0.50")
	containsLine(t, out, "TMAX 60.00")
}

// Intermediate pass-through nodes inside one composite conduit (same
// label on both sides) are elided from the elevation listing.
func TestElision_SameLabelChainElided(t *testing.T) {
	snap, nums := chainSnapshot(t, []string{"C1", "C1", "C1"})

	out := Emit(snap, units.SI)

	for _, mid := range nums[1:3] {
		if idx := lineIndex(out, nodeElevLine(mid)); idx >= 0 {
			t.Errorf("Pass-through node %d should be elided:\n%s", mid, out)
		}
	}
	containsLine(t, out, nodeElevLine(nums[0]))
	containsLine(t, out, nodeElevLine(nums[3]))
}

// When the conduit labels on either side differ, the intermediate nodes
// are true element boundaries and must be included.
func TestElision_DistinctLabelsIncluded(t *testing.T) {
	snap, nums := chainSnapshot(t, []string{"C1", "C2", "C3"})

	out := Emit(snap, units.SI)

	for _, num := range nums {
		containsLine(t, out, nodeElevLine(num))
	}
}

// A node carrying a special element is retained regardless of its
// reference pattern.
func TestElision_SpecialElementAlwaysIncluded(t *testing.T) {
	s := network.NewStore(network.Options{})
	res, _ := s.AddNode(network.KindReservoir, network.Position{})
	fb, _ := s.AddNode(network.KindFlowBoundary, network.Position{})
	end, _ := s.AddNode(network.KindNode, network.Position{})

	e1, _ := s.AddEdge(res.ID, fb.ID)
	e2, _ := s.AddEdge(fb.ID, end.ID)
	// Same label on both sides of the flow boundary: the pass-through
	// pattern that would elide a plain node.
	label := "C1"
	s.UpdateEdgeData(e1.ID, network.EdgeDataPatch{Label: &label})
	s.UpdateEdgeData(e2.ID, network.EdgeDataPatch{Label: &label})

	out := Emit(s.CurrentSnapshot(), units.SI)

	containsLine(t, out, "NODE 2 ELEV 164.04") // elevation 50 m
	containsLine(t, out, "ELEM FB AT 2")
}

func TestConnectivity_JunctionMarker(t *testing.T) {
	s := network.NewStore(network.Options{})
	res, _ := s.AddNode(network.KindReservoir, network.Position{})
	branch, _ := s.AddNode(network.KindNode, network.Position{})
	a, _ := s.AddNode(network.KindNode, network.Position{})
	b, _ := s.AddNode(network.KindNode, network.Position{})

	s.AddEdge(res.ID, branch.ID)
	s.AddEdge(branch.ID, a.ID)
	s.AddEdge(branch.ID, b.ID)

	out := Emit(s.CurrentSnapshot(), units.SI)

	// Fan-out of two links earns the junction marker even for a plain
	// node kind, and the marker keeps it in the elevation listing.
	containsLine(t, out, "JUNCTION AT 2")
	containsLine(t, out, "NODE 2 ELEV 164.04")
}

func TestConnectivity_DeclaredJunctionMarker(t *testing.T) {
	s := network.NewStore(network.Options{})
	res, _ := s.AddNode(network.KindReservoir, network.Position{})
	jn, _ := s.AddNode(network.KindJunction, network.Position{})
	s.AddEdge(res.ID, jn.ID)

	out := Emit(s.CurrentSnapshot(), units.SI)

	// A declared junction gets the marker even with a single link.
	containsLine(t, out, "JUNCTION AT 2")
}

func TestConnectivity_CycleTerminates(t *testing.T) {
	s := network.NewStore(network.Options{})
	res, _ := s.AddNode(network.KindReservoir, network.Position{})
	a, _ := s.AddNode(network.KindNode, network.Position{})
	b, _ := s.AddNode(network.KindNode, network.Position{})
	s.AddEdge(res.ID, a.ID)
	s.AddEdge(a.ID, b.ID)
	s.AddEdge(b.ID, a.ID) // cycle

	out := Emit(s.CurrentSnapshot(), units.SI)

	containsLine(t, out, "ELEM C2 LINK 2 3")
	containsLine(t, out, "ELEM C3 LINK 3 2")
}

func TestConnectivity_SelfLoopTerminates(t *testing.T) {
	s := network.NewStore(network.Options{})
	res, _ := s.AddNode(network.KindReservoir, network.Position{})
	a, _ := s.AddNode(network.KindNode, network.Position{})
	s.AddEdge(res.ID, a.ID)
	s.AddEdge(a.ID, a.ID)

	out := Emit(s.CurrentSnapshot(), units.SI)
	containsLine(t, out, "ELEM C2 LINK 2 2")
}

// Surge tanks and flow boundaries never reached from a reservoir are
// still announced so the engine sees every special element.
func TestConnectivity_DisconnectedSpecialEmitted(t *testing.T) {
	s := network.NewStore(network.Options{})
	s.AddNode(network.KindReservoir, network.Position{})
	s.AddNode(network.KindSurgeTank, network.Position{}) // no edge to it

	out := Emit(s.CurrentSnapshot(), units.SI)

	containsLine(t, out, "ELEM ST AT 2")
	containsLine(t, out, "NODE 2 ELEV 262.47")
}

func TestEmit_DuplicateEdgeLabelsDeduplicated(t *testing.T) {
	snap, _ := chainSnapshot(t, []string{"C1", "C1", "C1"})

	out := Emit(snap, units.SI)

	if n := strings.Count(out, "CONDUIT C1\n"); n != 1 {
		t.Errorf("Composite conduit should emit one property block, got %d", n)
	}
}

func TestEmit_VariableGeometryProfile(t *testing.T) {
	s := network.NewStore(network.Options{})
	res, _ := s.AddNode(network.KindReservoir, network.Position{})
	n, _ := s.AddNode(network.KindNode, network.Position{})
	e, _ := s.AddEdge(res.ID, n.ID)

	variable := true
	profile := []network.ProfileSample{
		{Distance: 0, Area: 1, Diameter: 1},
		{Distance: 500, Area: 2, Diameter: 1.5},
	}
	s.UpdateEdgeData(e.ID, network.EdgeDataPatch{Variable: &variable, Profile: &profile})

	out := Emit(s.CurrentSnapshot(), units.SI)

	containsLine(t, out, "PROFILE 0.00 10.76 3.28")
	containsLine(t, out, "PROFILE 1640.42 21.53 4.92")

	// The profile carries the cross-section; DIAM is omitted.
	block := out[strings.Index(out, "CONDUIT C1"):]
	block = block[:strings.Index(block, "CONTROL")]
	if strings.Contains(block, "DIAM ") {
		t.Errorf("Variable conduit must omit DIAM:\n%s", block)
	}
	if lineIndex(block, "LENGTH 3280.84") < lineIndex(block, "PROFILE 0.00 10.76 3.28") {
		t.Error("Profile samples must precede LENGTH")
	}
}

func TestEmit_OmitsUndefinedFields(t *testing.T) {
	s := network.NewStore(network.Options{})
	res, _ := s.AddNode(network.KindReservoir, network.Position{})
	n, _ := s.AddNode(network.KindNode, network.Position{})
	s.AddEdge(res.ID, n.ID)

	snap := s.CurrentSnapshot()
	e := snap.Edges[1]
	e.Data.Celerity = nil
	e.Data.Friction = nil
	snap.Edges[1] = e

	out := Emit(snap, units.SI)

	block := out[strings.Index(out, "CONDUIT C1"):]
	block = block[:strings.Index(block, "HISTORY")]
	if strings.Contains(block, "CELERITY") || strings.Contains(block, "FRICTION") {
		t.Errorf("Undefined fields must be omitted, not zero-filled:\n%s", block)
	}
}

// An element pinned to FPS is exported as-is while unpinned SI values
// are converted.
func TestEmit_LocalUnitOverride(t *testing.T) {
	s := network.NewStore(network.Options{})
	res, _ := s.AddNode(network.KindReservoir, network.Position{})
	fps := units.FPS
	elev := 300.0
	s.UpdateNodeData(res.ID, network.NodeDataPatch{Unit: &fps, Elevation: &elev})

	out := Emit(s.CurrentSnapshot(), units.SI)

	containsLine(t, out, "NODE 1 ELEV 300.00")
}

func nodeElevLine(num int) string {
	// Plain chain nodes default to elevation 50 m -> 164.04 ft; the
	// reservoir root is 100 m -> 328.08 ft and the tail is plain.
	if num == 1 {
		return "NODE 1 ELEV 328.08"
	}
	return "NODE " + strconv.Itoa(num) + " ELEV 164.04"
}

// chainSnapshot builds reservoir -> node -> node -> node with the given
// edge labels and returns the snapshot plus the four node numbers.
func chainSnapshot(t *testing.T, labels []string) (network.Snapshot, []int) {
	t.Helper()
	if len(labels) != 3 {
		t.Fatal("chainSnapshot wants exactly 3 labels")
	}

	s := network.NewStore(network.Options{})
	res, _ := s.AddNode(network.KindReservoir, network.Position{})
	n1, _ := s.AddNode(network.KindNode, network.Position{})
	n2, _ := s.AddNode(network.KindNode, network.Position{})
	n3, _ := s.AddNode(network.KindNode, network.Position{})

	ids := []uint64{res.ID, n1.ID, n2.ID, n3.ID}
	for i := 0; i < 3; i++ {
		e, err := s.AddEdge(ids[i], ids[i+1])
		if err != nil {
			t.Fatalf("AddEdge failed: %v", err)
		}
		label := labels[i]
		if _, err := s.UpdateEdgeData(e.ID, network.EdgeDataPatch{Label: &label}); err != nil {
			t.Fatalf("UpdateEdgeData failed: %v", err)
		}
	}

	return s.CurrentSnapshot(), []int{1, 2, 3, 4}
}
