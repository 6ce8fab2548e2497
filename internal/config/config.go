// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SimulationSettings controls the logical clock and the per-tick passes.
type SimulationSettings struct {
	FixedStep        float64 `yaml:"fixed_step"`         // simulated seconds per tick
	SpeedMultiplier  float64 `yaml:"speed_multiplier"`   // logical time scale, > 0
	StartPaused      bool    `yaml:"start_paused"`       // scheduler starts paused
	Headless         bool    `yaml:"headless"`           // suppress the TUI collaborator
	CollisionRadiusM float64 `yaml:"collision_radius_m"` // per-drone proximity radius
}

// GeoSettings anchors the equirectangular world frame.
type GeoSettings struct {
	OriginLat float64 `yaml:"origin_lat"`
	OriginLon float64 `yaml:"origin_lon"`
}

// NegotiationSettings configures the route negotiation transport.
type NegotiationSettings struct {
	Endpoint           string  `yaml:"endpoint"`             // ws:// URL of the routing service
	RequestTimeoutS    float64 `yaml:"request_timeout_s"`    // simulated seconds before fallback
	ReconnectIntervalS float64 `yaml:"reconnect_interval_s"` // wall-clock seconds between dials
	DisableNegotiation bool    `yaml:"disable_negotiation"`  // skip the service, always synthesize
}

// ProfileSpec declares a custom drone model's physical constants.
type ProfileSpec struct {
	Model           string  `yaml:"model"`
	MaxSpeed        float64 `yaml:"max_speed"`        // m/s
	MaxRange        float64 `yaml:"max_range"`        // m
	BatteryCapacity float64 `yaml:"battery_capacity"` // Wh
	PowerDraw       float64 `yaml:"power_draw"`       // W
	PayloadCapacity float64 `yaml:"payload_capacity"` // kg
	CruiseAltitude  float64 `yaml:"cruise_altitude"`  // m
}

// TelemetrySettings controls the periodic snapshot emission.
type TelemetrySettings struct {
	LogIntervalS float64 `yaml:"log_interval_s"` // simulated seconds between snapshots
}

// Config is the root configuration for the fleet simulator.
type Config struct {
	Simulation  SimulationSettings  `yaml:"simulation"`
	Geo         GeoSettings         `yaml:"geo"`
	Negotiation NegotiationSettings `yaml:"negotiation"`
	Profiles    []ProfileSpec       `yaml:"profiles"`
	FlightPlans string              `yaml:"flight_plans"` // path to the flight-plan CSV
	Telemetry   TelemetrySettings   `yaml:"telemetry"`
}

// Load loads YAML config, validates it against a CUE schema, and applies
// defaults for unset values.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if cfg.Simulation.SpeedMultiplier <= 0 {
		return nil, fmt.Errorf("simulation.speed_multiplier must be positive, got %v", cfg.Simulation.SpeedMultiplier)
	}
	if cfg.Simulation.FixedStep <= 0 {
		return nil, fmt.Errorf("simulation.fixed_step must be positive, got %v", cfg.Simulation.FixedStep)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Simulation.FixedStep == 0 {
		c.Simulation.FixedStep = 0.1
	}
	if c.Simulation.SpeedMultiplier == 0 {
		c.Simulation.SpeedMultiplier = 1.0
	}
	if c.Simulation.CollisionRadiusM == 0 {
		c.Simulation.CollisionRadiusM = 15
	}
	if c.Negotiation.RequestTimeoutS == 0 {
		c.Negotiation.RequestTimeoutS = 10
	}
	if c.Negotiation.ReconnectIntervalS == 0 {
		c.Negotiation.ReconnectIntervalS = 3
	}
	if c.Telemetry.LogIntervalS == 0 {
		c.Telemetry.LogIntervalS = 10
	}
}
