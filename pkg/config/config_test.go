package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/surgeworks/hammercad/pkg/units"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hammercad.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
unit: FPS
history_capacity: 25
log_level: debug
params:
  dtcomp: 0.02
  dtout: 0.2
  tmax: 60
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GlobalUnit() != units.FPS {
		t.Errorf("Expected FPS, got %v", cfg.GlobalUnit())
	}
	if cfg.HistoryCapacity != 25 {
		t.Errorf("Expected capacity 25, got %d", cfg.HistoryCapacity)
	}
	if p := cfg.ComputationalParams(); p.TMax != 60 {
		t.Errorf("Expected tmax 60, got %v", p.TMax)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "unit: FPS\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HistoryCapacity != 50 {
		t.Errorf("Unset field should keep default, got %d", cfg.HistoryCapacity)
	}
	if cfg.Params.DTComp != 0.01 {
		t.Errorf("Unset params should keep defaults, got %v", cfg.Params.DTComp)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, "unit: metric\nhistory_capacity: -1\n")

	if _, err := Load(path); err == nil {
		t.Error("Invalid config should be rejected")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Missing file should be an error")
	}
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}
