package e2e

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surgeworks/hammercad/pkg/hyfile"
	"github.com/surgeworks/hammercad/pkg/metrics"
	"github.com/surgeworks/hammercad/pkg/network"
	"github.com/surgeworks/hammercad/pkg/project"
	"github.com/surgeworks/hammercad/pkg/units"
)

// TestCompleteEditingWorkflow walks a full session: build a small plant
// in SI units, edit it, undo and redo, save the project, reload it, and
// export the engine input file.
func TestCompleteEditingWorkflow(t *testing.T) {
	store := network.NewStore(network.Options{
		Metrics:    metrics.NewRegistry(),
		GlobalUnit: units.SI,
	})

	t.Log("Step 1: Building the network...")
	reservoir, err := store.AddNode(network.KindReservoir, network.Position{X: 0, Y: 0})
	require.NoError(t, err)
	tank, err := store.AddNode(network.KindSurgeTank, network.Position{X: 300, Y: 0})
	require.NoError(t, err)
	conduit, err := store.AddEdge(reservoir.ID, tank.ID)
	require.NoError(t, err)

	assert.Equal(t, "HW", reservoir.Data.Label)
	assert.Equal(t, "ST", tank.Data.Label)
	assert.Equal(t, "C1", conduit.Data.Label)

	// Three request kinds per element.
	require.Len(t, store.Requests(), 9)

	t.Log("Step 2: Editing element data...")
	elev := 95.0
	_, err = store.UpdateNodeData(reservoir.ID, network.NodeDataPatch{Elevation: &elev})
	require.NoError(t, err)

	length := 1500.0
	_, err = store.UpdateEdgeData(conduit.ID, network.EdgeDataPatch{Length: &length})
	require.NoError(t, err)

	t.Log("Step 3: Undo and redo...")
	require.True(t, store.Undo())
	edge, err := store.Edge(conduit.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, *edge.Data.Length, 1e-9, "undo should restore the default length")

	require.True(t, store.Redo())
	edge, err = store.Edge(conduit.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1500.0, *edge.Data.Length, 1e-9)

	t.Log("Step 4: Toggling the unit system...")
	store.SetGlobalUnit(units.FPS)
	node, err := store.Node(reservoir.ID)
	require.NoError(t, err)
	assert.InDelta(t, 311.6798, *node.Data.Elevation, 1e-4)

	store.SetGlobalUnit(units.SI)
	node, err = store.Node(reservoir.ID)
	require.NoError(t, err)
	assert.InDelta(t, 95.0, *node.Data.Elevation, 1e-3, "round trip should land back on the entered value")

	t.Log("Step 5: Saving and reloading the project...")
	path := filepath.Join(t.TempDir(), "plant"+project.CompressedExt)
	require.NoError(t, project.Save(path, store.CurrentSnapshot()))

	reloaded := network.NewStore(network.Options{})
	require.NoError(t, project.LoadInto(reloaded, path))
	assert.Len(t, reloaded.Nodes(), 2)
	assert.Len(t, reloaded.Edges(), 1)
	assert.Len(t, reloaded.Requests(), 9)
	assert.Equal(t, units.SI, reloaded.GlobalUnit())

	t.Log("Step 6: Exporting the engine input file...")
	text := hyfile.Emit(reloaded.CurrentSnapshot(), reloaded.GlobalUnit())
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")

	assert.Equal(t, "SYSTEM", lines[0])
	assert.Contains(t, lines, "ELEM HW AT 1")
	assert.Contains(t, lines, "ELEM C1 LINK 1 2")
	assert.Contains(t, lines, "ELEM ST AT 2")
	assert.Contains(t, lines, "NODE 1 ELEV 311.68")
	assert.Contains(t, lines, "LENGTH 4921.26")
	assert.Equal(t, "GOODBYE", lines[len(lines)-1])

	// The file speaks FPS regardless of the editing unit system.
	assert.NotContains(t, text, "1500.00", "SI lengths must not leak into the export")
}

// TestExportAfterDelete verifies a deleted element disappears from both
// the request list and the exported file.
func TestExportAfterDelete(t *testing.T) {
	store := network.NewStore(network.Options{GlobalUnit: units.SI})

	reservoir, err := store.AddNode(network.KindReservoir, network.Position{})
	require.NoError(t, err)
	tank, err := store.AddNode(network.KindSurgeTank, network.Position{X: 100})
	require.NoError(t, err)
	boundary, err := store.AddNode(network.KindFlowBoundary, network.Position{X: 200})
	require.NoError(t, err)
	_, err = store.AddEdge(reservoir.ID, tank.ID)
	require.NoError(t, err)

	require.NoError(t, store.DeleteElement(boundary.ID, network.ElementNode))

	for _, r := range store.Requests() {
		assert.NotEqual(t, boundary.ID, r.ElementID, "requests for the deleted element must be pruned")
	}

	text := hyfile.Emit(store.CurrentSnapshot(), store.GlobalUnit())
	assert.NotContains(t, text, "FLOWBC")
	assert.NotContains(t, text, "QSCHEDULE")
}
