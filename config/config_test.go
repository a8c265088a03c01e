package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}

	if cfg.World.Width != 40 || cfg.World.Height != 40 {
		t.Errorf("world = %dx%d, want 40x40", cfg.World.Width, cfg.World.Height)
	}
	if cfg.World.CellCapacity != 100 {
		t.Errorf("cell_capacity = %d, want 100", cfg.World.CellCapacity)
	}
	if cfg.Derived.Cells != 1600 {
		t.Errorf("Derived.Cells = %d, want 1600", cfg.Derived.Cells)
	}
	if cfg.Derived.OctileHeur {
		t.Error("default heuristic should be squared")
	}
	if len(cfg.Generation.WaterPools) != 7 {
		t.Errorf("water pools = %v, want 7 entries", cfg.Generation.WaterPools)
	}
	if cfg.Species.Burrow.Size >= 0 {
		t.Errorf("burrow size = %d, want negative", cfg.Species.Burrow.Size)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	data := []byte("world:\n  width: 12\npathfinding:\n  heuristic: octile\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.World.Width != 12 {
		t.Errorf("width = %d, want 12", cfg.World.Width)
	}
	// Fields absent from the file keep their defaults
	if cfg.World.Height != 40 {
		t.Errorf("height = %d, want 40", cfg.World.Height)
	}
	if !cfg.Derived.OctileHeur {
		t.Error("expected octile heuristic after override")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	dir := t.TempDir()
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "world: [\n"},
		{"zero width", "world:\n  width: 0\n"},
		{"bad heuristic", "pathfinding:\n  heuristic: manhattan\n"},
		{"bad decay", "scent:\n  decay: 2\n"},
		{"bad litter", "species:\n  fox:\n    litter_min: 9\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("Load(%q) error = nil, want error", tt.body)
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.World.Width = 7
	cfg.ComputeDerived()

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.World.Width != 7 {
		t.Errorf("width = %d, want 7", loaded.World.Width)
	}
	if loaded.Derived.Cells != 7*40 {
		t.Errorf("Derived.Cells = %d, want %d", loaded.Derived.Cells, 7*40)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.Generation.WaterPools[0] = 99
	clone.Species.Rabbit.Size = 1

	if cfg.Generation.WaterPools[0] == 99 {
		t.Error("clone shares water pool slice with original")
	}
	if cfg.Species.Rabbit.Size == 1 {
		t.Error("clone shares species table with original")
	}
}

func TestCfgBeforeInitPanics(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("expected panic from Cfg() before Init()")
		}
	}()
	Cfg()
}
