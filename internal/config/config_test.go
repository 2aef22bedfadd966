package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/corearena/internal/render"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.UPS != 60 {
		t.Errorf("expected 60 ups, got %d", cfg.UPS)
	}
	if cfg.MaxSpeed != 64 || cfg.Speed != 1 {
		t.Errorf("expected speed 1 of 64, got %d of %d", cfg.Speed, cfg.MaxSpeed)
	}
	if !cfg.ShowValues {
		t.Error("values should be shown by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arena.yaml")
	data := `
ups: 30
speed: 8
show_values: false
geometry: pixel
players:
  - id: 7
    color: "#112233"
    source: champs/imp.s
  - id: -2
    builtin: kappa
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "champs"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "champs", "imp.s"), []byte(".name \"imp\"\nlive\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.UPS != 30 || cfg.Speed != 8 || cfg.ShowValues {
		t.Errorf("unexpected values %+v", cfg)
	}
	if cfg.MaxSpeed != DefaultMaxSpeed {
		t.Errorf("expected unset max_speed to keep its default, got %d", cfg.MaxSpeed)
	}
	if geo, _ := cfg.ResolveGeometry(render.TerminalGeometry); geo != render.PixelGeometry {
		t.Errorf("expected pixel geometry, got %+v", geo)
	}
	if len(cfg.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(cfg.Players))
	}

	src, err := cfg.LoadSource(cfg.Players[0])
	if err != nil || !strings.Contains(src, "imp") {
		t.Errorf("expected imp source relative to config, got %q %v", src, err)
	}
	src, err = cfg.LoadSource(cfg.Players[1])
	if err != nil || !strings.Contains(src, "kappa") {
		t.Errorf("expected kappa built-in, got %q %v", src, err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"zero ups", "ups: 0"},
		{"speed not power of two", "speed: 3"},
		{"speed above max", "speed: 128"},
		{"unknown geometry", "geometry: hologram"},
		{"zero id", "players: [{id: 0}]"},
		{"duplicate id", "players: [{id: 1}, {id: 1}]"},
		{"source and builtin", "players: [{id: 1, source: a.s, builtin: kappa}]"},
		{"bad color", "players: [{id: 1, color: red}]"},
		{"too many players", "players: [{id: 1}, {id: 2}, {id: 3}, {id: 4}, {id: 5}]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "arena.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.yaml")
	cfg := GetPreset("melee")

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Speed != cfg.Speed || len(loaded.Players) != len(cfg.Players) {
		t.Errorf("expected %+v, got %+v", cfg, loaded)
	}
	if loaded.Players[2].Builtin != "helltrain" {
		t.Errorf("expected helltrain, got %+v", loaded.Players[2])
	}
}

func TestAddSources(t *testing.T) {
	cfg := GetPreset("duel")
	cfg.AddSources("a.s", "b.s")

	if len(cfg.Players) != 4 {
		t.Fatalf("expected 4 players, got %d", len(cfg.Players))
	}
	if cfg.Players[2].ID != 3 || cfg.Players[3].ID != 4 || cfg.Players[3].Source != "b.s" {
		t.Errorf("unexpected players %+v", cfg.Players[2:])
	}
	if err := cfg.Validate(); err != nil {
		t.Error(err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("duel")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	cfg.Players[0].ID = 99
	if Presets["duel"].Players[0].ID != 1 {
		t.Error("expected GetPreset to return a copy")
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Errorf("expected %d presets, got %v", len(Presets), names)
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestValidateRoster(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AddSources("a.s", "b.s", "c.s", "d.s", "e.s")

	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig above %d players, got %v", MaxPlayers, err)
	}
	if err := cfg.ValidateRoster(0); err != nil {
		t.Errorf("expected an unlimited roster to pass, got %v", err)
	}
}
