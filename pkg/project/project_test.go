package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/surgeworks/hammercad/pkg/network"
	"github.com/surgeworks/hammercad/pkg/units"
)

func buildStore(t *testing.T) *network.Store {
	t.Helper()
	s := network.NewStore(network.Options{})
	res, err := s.AddNode(network.KindReservoir, network.Position{X: 0, Y: 0})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	tank, err := s.AddNode(network.KindSurgeTank, network.Position{X: 100, Y: 0})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if _, err := s.AddEdge(res.ID, tank.ID); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	return s
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := buildStore(t)
	path := filepath.Join(t.TempDir(), "plant.hmj")

	snap := s.CurrentSnapshot()
	if err := Save(path, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Nodes) != 2 || len(loaded.Edges) != 1 {
		t.Fatalf("loaded %d nodes %d edges, want 2 and 1", len(loaded.Nodes), len(loaded.Edges))
	}
	if len(loaded.Requests) != len(snap.Requests) {
		t.Errorf("loaded %d requests, want %d", len(loaded.Requests), len(snap.Requests))
	}
	if loaded.GlobalUnit != snap.GlobalUnit {
		t.Errorf("global unit %v, want %v", loaded.GlobalUnit, snap.GlobalUnit)
	}
	if loaded.NextNodeID != snap.NextNodeID || loaded.NextEdgeID != snap.NextEdgeID {
		t.Errorf("ID counters (%d, %d), want (%d, %d)",
			loaded.NextNodeID, loaded.NextEdgeID, snap.NextNodeID, snap.NextEdgeID)
	}
}

func TestSaveLoad_Compressed(t *testing.T) {
	s := buildStore(t)
	dir := t.TempDir()
	plain := filepath.Join(dir, "plant.hmj")
	packed := filepath.Join(dir, "plant"+CompressedExt)

	snap := s.CurrentSnapshot()
	if err := Save(plain, snap); err != nil {
		t.Fatalf("Save plain: %v", err)
	}
	if err := Save(packed, snap); err != nil {
		t.Fatalf("Save compressed: %v", err)
	}

	loaded, err := Load(packed)
	if err != nil {
		t.Fatalf("Load compressed: %v", err)
	}
	if len(loaded.Nodes) != 2 {
		t.Fatalf("loaded %d nodes, want 2", len(loaded.Nodes))
	}

	// The compressed form must not be plain JSON on disk.
	raw, err := os.ReadFile(packed)
	if err != nil {
		t.Fatalf("read compressed: %v", err)
	}
	if len(raw) > 0 && raw[0] == '{' {
		t.Error("compressed file begins with '{', looks uncompressed")
	}
}

func TestSave_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plant.hmj")
	if err := Save(path, buildStore(t).CurrentSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file still present after save")
	}
}

func TestLoadInto_RegeneratesRequests(t *testing.T) {
	s := buildStore(t)
	snap := s.CurrentSnapshot()
	snap.Requests = nil
	path := filepath.Join(t.TempDir(), "plant.hmj")
	if err := Save(path, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	dest := network.NewStore(network.Options{})
	if err := LoadInto(dest, path); err != nil {
		t.Fatalf("LoadInto: %v", err)
	}
	// 2 nodes + 1 edge, three request kinds each.
	if got := len(dest.Requests()); got != 9 {
		t.Errorf("got %d regenerated requests, want 9", got)
	}
}

func TestLoadInto_KeepsExistingRequests(t *testing.T) {
	s := buildStore(t)
	snap := s.CurrentSnapshot()
	want := len(snap.Requests)
	path := filepath.Join(t.TempDir(), "plant.hmj")
	if err := Save(path, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	dest := network.NewStore(network.Options{})
	if err := LoadInto(dest, path); err != nil {
		t.Fatalf("LoadInto: %v", err)
	}
	if got := len(dest.Requests()); got != want {
		t.Errorf("got %d requests, want %d", got, want)
	}
}

func TestLoad_RepairsIDCounters(t *testing.T) {
	snap := network.Snapshot{
		Nodes: map[uint64]network.Node{
			7: {ID: 7, Kind: network.KindNode},
		},
		Edges:      map[uint64]network.Edge{},
		GlobalUnit: units.SI,
	}
	path := filepath.Join(t.TempDir(), "plant.hmj")
	if err := Save(path, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.NextNodeID != 8 {
		t.Errorf("NextNodeID = %d, want 8", loaded.NextNodeID)
	}
	if loaded.NextEdgeID != 1 {
		t.Errorf("NextEdgeID = %d, want 1", loaded.NextEdgeID)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.hmj")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_BadVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plant.hmj")
	if err := os.WriteFile(path, []byte(`{"version": 99, "snapshot": {}}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported version")
	}
}
