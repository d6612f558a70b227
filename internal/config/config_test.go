package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/tiltsim/internal/grid"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Transform != "spin" {
		t.Errorf("expected transform spin, got %s", cfg.Transform)
	}
	if cfg.Target != 1_000_000_000 {
		t.Errorf("expected target 1e9, got %d", cfg.Target)
	}
	if !cfg.Accelerated {
		t.Error("default config should be accelerated")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Detector = "brent"
	cfg.Target = 42
	cfg.Grid = "O.\n.#\n"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch: got %+v, want %+v", loaded, cfg)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("target: 7\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Target != 7 {
		t.Errorf("expected target 7, got %d", cfg.Target)
	}
	if cfg.Detector != DefaultDetector {
		t.Errorf("expected default detector, got %s", cfg.Detector)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("target: -5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error")
	}
}

func TestSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grid.txt")
	if err := os.WriteFile(path, []byte("O.\n..\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Input = path
	g, err := cfg.Source()
	if err != nil {
		t.Fatalf("source failed: %v", err)
	}
	if g.Load() != 2 {
		t.Errorf("expected load 2, got %d", g.Load())
	}

	cfg.Grid = "x\n"
	if _, err := cfg.Source(); !errors.Is(err, grid.ErrUnknownGlyph) {
		t.Errorf("expected unknown glyph error, got %v", err)
	}

	if _, err := DefaultConfig().Source(); err == nil {
		t.Error("expected error without grid or input")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("reference")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	g, err := cfg.Source()
	if err != nil {
		t.Fatalf("preset grid invalid: %v", err)
	}
	if g.Rows() != 10 || g.Cols() != 10 {
		t.Errorf("expected 10x10, got %dx%d", g.Rows(), g.Cols())
	}

	cfg.Target = 1
	if Presets["reference"].Target == 1 {
		t.Error("GetPreset returned shared state")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for _, name := range names {
		cfg := GetPreset(name)
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
		if _, err := cfg.Source(); err != nil {
			t.Errorf("preset %s grid invalid: %v", name, err)
		}
	}
}

func TestLoadOver_KeepsUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detector.yaml")
	if err := os.WriteFile(path, []byte("detector: brent\n"), 0644); err != nil {
		t.Fatal(err)
	}

	base := GetPreset("north")
	cfg, err := LoadOver(path, base)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Detector != "brent" {
		t.Errorf("expected detector brent, got %s", cfg.Detector)
	}
	if cfg.Transform != "north" || cfg.Target != 1 || cfg.Accelerated {
		t.Errorf("preset fields were not kept: %+v", cfg)
	}
	if cfg.Grid != base.Grid {
		t.Error("preset grid was not kept")
	}
	if base.Detector != "floyd" {
		t.Error("LoadOver modified its base")
	}
}

func TestLoadOver_GridSourceReplacesBoth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.yaml")
	if err := os.WriteFile(path, []byte("input: platform.txt\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOver(path, GetPreset("reference"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Input != "platform.txt" || cfg.Grid != "" {
		t.Errorf("expected only input to be set, got input=%q grid=%q", cfg.Input, cfg.Grid)
	}
}

func TestLoadOver_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("max_steps: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOver(path, DefaultConfig()); err == nil {
		t.Error("expected validation error")
	}
}
