// Package project saves and loads editor projects. A project file is a
// JSON rendering of the network snapshot; the .hmz variant wraps the
// same bytes in snappy compression. Writes go through a temp file and
// rename so a crash never leaves a half-written project.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"

	"github.com/surgeworks/hammercad/pkg/network"
)

const (
	dirPermissions  = 0755
	filePermissions = 0644

	// CompressedExt marks snappy-compressed project files.
	CompressedExt = ".hmz"

	formatVersion = 1
)

// File is the on-disk project representation.
type File struct {
	Version  int              `json:"version"`
	Snapshot network.Snapshot `json:"snapshot"`
}

// Save writes the snapshot to path. Paths ending in .hmz are
// snappy-compressed.
func Save(path string, snap network.Snapshot) error {
	data, err := json.MarshalIndent(File{Version: formatVersion, Snapshot: snap}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}

	if strings.HasSuffix(path, CompressedExt) {
		data = snappy.Encode(nil, data)
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("create project directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, filePermissions); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit project: %w", err)
	}
	return nil
}

// Load reads a project file written by Save.
func Load(path string) (network.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return network.Snapshot{}, fmt.Errorf("read project: %w", err)
	}

	if strings.HasSuffix(path, CompressedExt) {
		data, err = snappy.Decode(nil, data)
		if err != nil {
			return network.Snapshot{}, fmt.Errorf("decompress project: %w", err)
		}
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return network.Snapshot{}, fmt.Errorf("parse project: %w", err)
	}
	if f.Version != formatVersion {
		return network.Snapshot{}, fmt.Errorf("unsupported project version %d", f.Version)
	}

	snap := f.Snapshot
	if snap.Nodes == nil {
		snap.Nodes = make(map[uint64]network.Node)
	}
	if snap.Edges == nil {
		snap.Edges = make(map[uint64]network.Edge)
	}
	normalizeIDs(&snap)
	return snap, nil
}

// LoadInto restores a project into the store. A project saved without
// output requests gets the default set regenerated for every element.
func LoadInto(store *network.Store, path string) error {
	snap, err := Load(path)
	if err != nil {
		return err
	}
	hadRequests := len(snap.Requests) > 0
	store.LoadSnapshot(snap)
	if !hadRequests {
		store.AutoSelectAll()
	}
	return nil
}

// normalizeIDs repairs the ID counters for files written by hand or by
// older builds, so new elements never collide with loaded ones.
func normalizeIDs(snap *network.Snapshot) {
	for id := range snap.Nodes {
		if id >= snap.NextNodeID {
			snap.NextNodeID = id + 1
		}
	}
	for id := range snap.Edges {
		if id >= snap.NextEdgeID {
			snap.NextEdgeID = id + 1
		}
	}
	if snap.NextNodeID == 0 {
		snap.NextNodeID = 1
	}
	if snap.NextEdgeID == 0 {
		snap.NextEdgeID = 1
	}
}
