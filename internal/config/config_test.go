package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected valid defaults, got %v", err)
	}
	if cfg.TickRate != 20 {
		t.Errorf("Expected tick rate 20, got %d", cfg.TickRate)
	}
	if cfg.TickDuration() != 50*time.Millisecond {
		t.Errorf("Expected 50ms ticks, got %s", cfg.TickDuration())
	}
	if cfg.ContactMemory != 20 {
		t.Errorf("Expected contact memory 20, got %d", cfg.ContactMemory)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "sim.yaml")
	data := []byte("tick_rate: 40\ngravity: 0.04\nscene:\n  items: 9\n")
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(filename)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.TickRate != 40 || cfg.Gravity != 0.04 || cfg.Scene.Items != 9 {
		t.Errorf("Expected file values, got %+v", cfg)
	}
	// Untouched keys keep their defaults.
	if cfg.Drag != 0.98 || cfg.Scene.FerrySpeed != 0.1 {
		t.Errorf("Expected defaults kept, got drag %f speed %f", cfg.Drag, cfg.Scene.FerrySpeed)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}

	filename := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(filename, []byte("tick_rate: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(filename); err == nil {
		t.Error("Expected validation error for zero tick rate")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ASSEMBLY_SIM_TICKS", "12")
	t.Setenv("ASSEMBLY_SIM_GRAVITY", "0.1")
	t.Setenv("ASSEMBLY_SIM_SYNC_URL", "ws://localhost:9000/motion")
	t.Setenv("ASSEMBLY_SIM_DEBUG", "true")
	t.Setenv("ASSEMBLY_SIM_TICK_RATE", "fast")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Ticks != 12 || cfg.Gravity != 0.1 || !cfg.Debug {
		t.Errorf("Expected env overrides, got %+v", cfg)
	}
	if cfg.SyncURL != "ws://localhost:9000/motion" {
		t.Errorf("Expected sync url override, got %q", cfg.SyncURL)
	}
	if cfg.TickRate != 20 {
		t.Errorf("Expected malformed tick rate ignored, got %d", cfg.TickRate)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"negative ticks", func(c *Config) { c.Ticks = -1 }},
		{"negative memory", func(c *Config) { c.ContactMemory = -1 }},
		{"drag above one", func(c *Config) { c.Drag = 1.5 }},
		{"zero ground drag", func(c *Config) { c.GroundDrag = 0 }},
		{"watch without file", func(c *Config) { c.WatchMaterials = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
