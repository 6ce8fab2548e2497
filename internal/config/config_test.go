package config

import (
	"os"
	"path/filepath"
	"testing"
)

const schemaPath = "../../schemas/simulation.cue"

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "simulation.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
simulation:
  fixed_step: 0.5
  speed_multiplier: 2.0
  collision_radius_m: 20
negotiation:
  endpoint: ws://localhost:8765
  request_timeout_s: 5
flight_plans: config/flightplans.csv
profiles:
  - model: Survey Quadcopter
    max_speed: 18
    max_range: 20000
    battery_capacity: 140
    power_draw: 210
`)
	cfg, err := Load(path, schemaPath)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Simulation.FixedStep != 0.5 || cfg.Simulation.SpeedMultiplier != 2.0 {
		t.Errorf("unexpected simulation settings %+v", cfg.Simulation)
	}
	if cfg.Negotiation.Endpoint != "ws://localhost:8765" || cfg.Negotiation.RequestTimeoutS != 5 {
		t.Errorf("unexpected negotiation settings %+v", cfg.Negotiation)
	}
	if len(cfg.Profiles) != 1 || cfg.Profiles[0].Model != "Survey Quadcopter" {
		t.Errorf("unexpected profiles %+v", cfg.Profiles)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
flight_plans: config/flightplans.csv
`)
	cfg, err := Load(path, schemaPath)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Simulation.FixedStep != 0.1 {
		t.Errorf("expected fixed_step default 0.1, got %v", cfg.Simulation.FixedStep)
	}
	if cfg.Simulation.SpeedMultiplier != 1.0 {
		t.Errorf("expected speed_multiplier default 1.0, got %v", cfg.Simulation.SpeedMultiplier)
	}
	if cfg.Simulation.CollisionRadiusM != 15 {
		t.Errorf("expected collision_radius_m default 15, got %v", cfg.Simulation.CollisionRadiusM)
	}
	if cfg.Negotiation.RequestTimeoutS != 10 || cfg.Negotiation.ReconnectIntervalS != 3 {
		t.Errorf("unexpected negotiation defaults %+v", cfg.Negotiation)
	}
	if cfg.Telemetry.LogIntervalS != 10 {
		t.Errorf("expected log_interval_s default 10, got %v", cfg.Telemetry.LogIntervalS)
	}
}

func TestLoadRejectsNegativeStep(t *testing.T) {
	path := writeConfig(t, `
simulation:
  fixed_step: -1
`)
	if _, err := Load(path, schemaPath); err == nil {
		t.Error("expected schema validation to reject a negative fixed_step")
	}
}

func TestLoadRejectsInvalidProfile(t *testing.T) {
	path := writeConfig(t, `
profiles:
  - model: Broken
    max_speed: 0
    max_range: 100
    battery_capacity: 10
    power_draw: 10
`)
	if _, err := Load(path, schemaPath); err == nil {
		t.Error("expected schema validation to reject a zero max_speed")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), schemaPath); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestValidateWithCueMissingSchema(t *testing.T) {
	path := writeConfig(t, "flight_plans: x.csv\n")
	if err := ValidateWithCue(path, filepath.Join(t.TempDir(), "nope.cue")); err == nil {
		t.Error("expected an error for a missing schema file")
	}
}
