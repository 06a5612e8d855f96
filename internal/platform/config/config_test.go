package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseScenarioOverlaysBase(t *testing.T) {
	// Setup
	base := DefaultSimulation()
	data := []byte(`
name: short-hop
grid_width: 60
mission_days: 30
frame_rate: 50ms
initial_resources:
  oxygen: 22
  food: 4000
`)

	// Act
	sim, err := ParseScenario(data, base)

	// Assert
	if err != nil {
		t.Fatalf("ParseScenario: %v", err)
	}
	if sim.ScenarioName != "short-hop" || sim.GridWidth != 60 || sim.MissionDays != 30 {
		t.Errorf("overrides not applied: %+v", sim)
	}
	if sim.GridHeight != base.GridHeight || sim.BaseCost != base.BaseCost {
		t.Errorf("unset fields should keep base values: %+v", sim)
	}
	if sim.FrameRate != 50*time.Millisecond {
		t.Errorf("frame_rate: expected 50ms got %s", sim.FrameRate)
	}
	if sim.InitialResources.Oxygen != 22 || sim.InitialResources.Food != 4000 {
		t.Errorf("resource overrides missing: %+v", sim.InitialResources)
	}
	if sim.InitialResources.Water != base.InitialResources.Water {
		t.Errorf("unset resource should keep base: %f", sim.InitialResources.Water)
	}
}

func TestParseScenarioRejectsInvalid(t *testing.T) {
	_, err := ParseScenario([]byte("grid_width: -4\n"), DefaultSimulation())

	if err == nil {
		t.Fatalf("negative grid width should be rejected")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	if err := os.WriteFile(path, []byte("mission_days: 90\n"), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	t.Setenv("BIOHOME_SCENARIO", path)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("BIOHOME_SEED", "42")

	cfg, err := Load()

	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port: expected 9090 got %s", cfg.Server.Port)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("origins not split: %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Simulation.MissionDays != 90 || cfg.Simulation.Seed != 42 {
		t.Errorf("simulation overrides missing: %+v", cfg.Simulation)
	}
	if cfg.Postgres.Enabled {
		t.Errorf("postgres should be disabled without a URL")
	}
}
