// Package hyfile linearizes a network snapshot into the transient
// engine's line-oriented input grammar. Emission is a pure read: it
// never mutates the snapshot and never fails for referentially intact
// input. Missing optional fields are omitted, not errors.
package hyfile

import (
	"fmt"
	"strings"
	"time"

	"github.com/surgeworks/hammercad/pkg/logging"
	"github.com/surgeworks/hammercad/pkg/metrics"
	"github.com/surgeworks/hammercad/pkg/network"
	"github.com/surgeworks/hammercad/pkg/units"
)

// The engine consumes FPS regardless of the editing unit system.
const exportUnit = units.FPS

// Emitter wraps emission with logging and metrics. Emit remains usable
// as a bare function.
type Emitter struct {
	log logging.Logger
	reg *metrics.Registry
}

// NewEmitter creates an Emitter. Logger may be nil.
func NewEmitter(log logging.Logger, reg *metrics.Registry) *Emitter {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Emitter{log: log.With(logging.Component("hyfile")), reg: reg}
}

// Emit produces the full domain-file text for the snapshot.
func (em *Emitter) Emit(snap network.Snapshot, global units.Unit) string {
	start := time.Now()
	text := Emit(snap, global)
	if em.reg != nil {
		em.reg.RecordExport("ok", time.Since(start), len(text))
	}
	em.log.Info("domain file emitted",
		logging.Count(len(snap.Nodes)),
		logging.Int("bytes", len(text)))
	return text
}

// Emit produces the full domain-file text: system header, connectivity,
// node elevations, per-kind property blocks, schedules, output
// requests, and the control trailer, in that fixed order.
func Emit(snap network.Snapshot, global units.Unit) string {
	var b strings.Builder

	conn := buildConnectivity(snap)

	b.WriteString("SYSTEM\n")
	for _, line := range conn.lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	writeElevations(&b, snap, conn, global)
	b.WriteString("FINISH\n")

	writeReservoirs(&b, snap, global)
	writeEdgeBlocks(&b, snap, global)
	writeSurgeTanks(&b, snap, global)
	writeFlowBoundaries(&b, snap)

	writeSchedules(&b, snap, global)
	writeRequests(&b, snap, conn)

	p := snap.Params
	b.WriteString("CONTROL\n")
	fmt.Fprintf(&b, "DTCOMP %s\n", num(p.DTComp))
	fmt.Fprintf(&b, "DTOUT %s\n", num(p.DTOut))
	fmt.Fprintf(&b, "TMAX %s\n", num(p.TMax))
	b.WriteString("GO\n")
	b.WriteString("GOODBYE\n")

	return b.String()
}

// num formats a value at the engine's export precision.
func num(v float64) string {
	return fmt.Sprintf("%.*f", units.ExportPrecision, v)
}

// exportNum converts a value from its effective unit to the engine's
// unit and formats it.
func exportNum(v float64, from units.Unit, q units.Quantity) string {
	return num(units.Convert(v, from, exportUnit, q))
}

// writeElevations emits the NODE ... ELEV listing for every included
// node-number. Numbers surviving elision but belonging to nodes without
// a defined elevation are simply skipped.
func writeElevations(b *strings.Builder, snap network.Snapshot, conn *connectivity, global units.Unit) {
	byNumber := make(map[int]network.Node, len(snap.Nodes))
	for _, id := range sortedNodeIDs(snap) {
		n := snap.Nodes[id]
		byNumber[nodeNumber(n)] = n
	}

	for _, numb := range conn.includedNumbers() {
		n, ok := byNumber[numb]
		if !ok || n.Data.Elevation == nil {
			continue
		}
		eff := n.EffectiveUnit(global)
		fmt.Fprintf(b, "NODE %d ELEV %s\n", numb, exportNum(*n.Data.Elevation, eff, units.Elevation))
	}
}

func writeReservoirs(b *strings.Builder, snap network.Snapshot, global units.Unit) {
	for _, id := range sortedNodeIDs(snap) {
		n := snap.Nodes[id]
		if n.Kind != network.KindReservoir {
			continue
		}
		eff := n.EffectiveUnit(global)
		writeComment(b, n.Data.Comment)
		fmt.Fprintf(b, "RESERVOIR %s\n", n.Data.Label)
		if n.Data.Elevation != nil {
			fmt.Fprintf(b, "ELEV %s\n", exportNum(*n.Data.Elevation, eff, units.Elevation))
		}
	}
}

// writeEdgeBlocks emits CONDUIT and DUMMY property blocks. Edges
// sharing a label describe segments of one composite element, so only
// the first occurrence of each label is emitted.
func writeEdgeBlocks(b *strings.Builder, snap network.Snapshot, global units.Unit) {
	seen := make(map[string]bool)
	for _, id := range sortedEdgeIDs(snap) {
		e := snap.Edges[id]
		if seen[e.Data.Label] {
			continue
		}
		seen[e.Data.Label] = true

		eff := e.EffectiveUnit(global)
		d := e.Data

		keyword := "CONDUIT"
		if d.Kind == network.KindDummy {
			keyword = "DUMMY"
		}
		fmt.Fprintf(b, "%s %s\n", keyword, d.Label)

		// Variable geometry carries the cross-section in the profile;
		// the fixed diameter is omitted in that case.
		if d.Variable {
			for _, p := range d.Profile {
				fmt.Fprintf(b, "PROFILE %s %s %s\n",
					exportNum(p.Distance, eff, units.Length),
					exportNum(p.Area, eff, units.Area),
					exportNum(p.Diameter, eff, units.Diameter))
			}
		}
		if d.Length != nil {
			fmt.Fprintf(b, "LENGTH %s\n", exportNum(*d.Length, eff, units.Length))
		}
		if !d.Variable && d.Diameter != nil {
			fmt.Fprintf(b, "DIAM %s\n", exportNum(*d.Diameter, eff, units.Diameter))
		}
		if d.Celerity != nil {
			fmt.Fprintf(b, "CELERITY %s\n", exportNum(*d.Celerity, eff, units.Celerity))
		}
		if d.Friction != nil {
			fmt.Fprintf(b, "FRICTION %s\n", num(*d.Friction))
		}
		if d.Segments != nil {
			fmt.Fprintf(b, "SEGMENTS %d\n", *d.Segments)
		}
		if d.CPlus != nil {
			fmt.Fprintf(b, "CPLUS %s\n", num(*d.CPlus))
		}
		if d.CMinus != nil {
			fmt.Fprintf(b, "CMINUS %s\n", num(*d.CMinus))
		}
	}
}

func writeSurgeTanks(b *strings.Builder, snap network.Snapshot, global units.Unit) {
	for _, id := range sortedNodeIDs(snap) {
		n := snap.Nodes[id]
		if n.Kind != network.KindSurgeTank {
			continue
		}
		eff := n.EffectiveUnit(global)
		d := n.Data
		writeComment(b, d.Comment)
		fmt.Fprintf(b, "SURGETANK %s\n", d.Label)
		if d.TankTop != nil {
			fmt.Fprintf(b, "ELTOP %s\n", exportNum(*d.TankTop, eff, units.Elevation))
		}
		if d.TankBottom != nil {
			fmt.Fprintf(b, "ELBOTTOM %s\n", exportNum(*d.TankBottom, eff, units.Elevation))
		}
		if d.Diameter != nil {
			fmt.Fprintf(b, "DIAM %s\n", exportNum(*d.Diameter, eff, units.Diameter))
		}
		if d.Celerity != nil {
			fmt.Fprintf(b, "CELERITY %s\n", exportNum(*d.Celerity, eff, units.Celerity))
		}
		if d.Friction != nil {
			fmt.Fprintf(b, "FRICTION %s\n", num(*d.Friction))
		}
	}
}

func writeFlowBoundaries(b *strings.Builder, snap network.Snapshot) {
	for _, id := range sortedNodeIDs(snap) {
		n := snap.Nodes[id]
		if n.Kind != network.KindFlowBoundary {
			continue
		}
		writeComment(b, n.Data.Comment)
		fmt.Fprintf(b, "FLOWBC %s\n", n.Data.Label)
		if n.Data.ScheduleNumber != nil {
			fmt.Fprintf(b, "SCHEDULE %d\n", *n.Data.ScheduleNumber)
		}
	}
}

// defaultSchedule is the fallback emitted for a flow boundary with no
// schedule points. An explicit default policy, not an error; the values
// are engine-unit literals and bypass conversion.
var defaultSchedule = []network.SchedulePoint{
	{Time: 0, Flow: 3000},
	{Time: 20, Flow: 0},
	{Time: 3000, Flow: 0},
}

func writeSchedules(b *strings.Builder, snap network.Snapshot, global units.Unit) {
	for _, id := range sortedNodeIDs(snap) {
		n := snap.Nodes[id]
		if n.Kind != network.KindFlowBoundary {
			continue
		}

		schedNum := 1
		if n.Data.ScheduleNumber != nil {
			schedNum = *n.Data.ScheduleNumber
		}
		fmt.Fprintf(b, "QSCHEDULE %d\n", schedNum)

		if len(n.Data.Schedule) == 0 {
			for _, p := range defaultSchedule {
				fmt.Fprintf(b, "%s %s\n", num(p.Time), num(p.Flow))
			}
			continue
		}
		eff := n.EffectiveUnit(global)
		for _, p := range n.Data.Schedule {
			fmt.Fprintf(b, "%s %s\n", num(p.Time), exportNum(p.Flow, eff, units.Flow))
		}
	}
}

// writeRequests groups output requests by type and resolves each target
// label: surge-tank nodes address their element label with an ELEM
// prefix; every other node or edge uses a NODE prefix with its node
// number or edge label. A trailing DISPLAY ALL closes multi-group
// output; an empty request set falls back to a minimal history block.
func writeRequests(b *strings.Builder, snap network.Snapshot, conn *connectivity) {
	order := []network.RequestType{
		network.RequestHistory,
		network.RequestPlot,
		network.RequestSpreadsheet,
	}

	groups := make(map[network.RequestType][]string)
	for _, r := range snap.Requests {
		target, ok := resolveTarget(snap, r)
		if !ok {
			// Orphaned request; the store prunes these, but emission
			// must never fail, so it is skipped rather than reported.
			continue
		}
		groups[r.RequestType] = append(groups[r.RequestType],
			fmt.Sprintf("%s %s", target, strings.Join(r.Variables, " ")))
	}

	present := 0
	for _, rt := range order {
		if len(groups[rt]) > 0 {
			present++
		}
	}

	if present == 0 {
		writeDefaultRequestBlock(b, conn)
		return
	}

	for _, rt := range order {
		lines := groups[rt]
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(b, "%s\n", rt)
		for _, line := range lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	if present > 1 {
		b.WriteString("DISPLAY ALL\n")
	}
}

func resolveTarget(snap network.Snapshot, r network.OutputRequest) (string, bool) {
	switch r.ElementType {
	case network.ElementNode:
		n, ok := snap.Nodes[r.ElementID]
		if !ok {
			return "", false
		}
		if n.Kind == network.KindSurgeTank {
			return fmt.Sprintf("ELEM %s", n.Data.Label), true
		}
		return fmt.Sprintf("NODE %d", nodeNumber(n)), true
	case network.ElementEdge:
		e, ok := snap.Edges[r.ElementID]
		if !ok {
			return "", false
		}
		return fmt.Sprintf("NODE %s", e.Data.Label), true
	default:
		return "", false
	}
}

// writeDefaultRequestBlock emits the minimal history block used when
// the model carries no output requests at all.
func writeDefaultRequestBlock(b *strings.Builder, conn *connectivity) {
	b.WriteString("HISTORY\n")
	included := conn.includedNumbers()
	if len(included) > 0 {
		fmt.Fprintf(b, "NODE %d %s\n", included[0], strings.Join(network.DefaultVariables, " "))
	}
}

func writeComment(b *strings.Builder, comment string) {
	if comment == "" {
		return
	}
	for _, line := range strings.Split(comment, "\n") {
		fmt.Fprintf(b, "* %s\n", line)
	}
}
