// Telemetry row structs written by the simulation sinks.
package telemetry

import (
	"os"
	"time"
)

// TelemetryRow is one per-drone snapshot record.
type TelemetryRow struct {
	SimID       string    `json:"sim_id"`   // TAG
	DroneID     string    `json:"drone_id"` // TAG
	Model       string    `json:"model"`    // FIELD
	X           float64   `json:"x"`        // FIELD
	Y           float64   `json:"y"`        // FIELD
	Z           float64   `json:"z"`        // FIELD
	SpeedMS     float64   `json:"speed_ms"`
	BatteryWh   float64   `json:"battery_wh"`
	BatteryPct  float64   `json:"battery_pct"`
	Journey     string    `json:"journey"`
	Negotiation string    `json:"negotiation"`
	Waypoint    string    `json:"waypoint,omitempty"`
	DistanceM   float64   `json:"distance_m"`
	FlightTimeS float64   `json:"flight_time_s"`
	Colliding   bool      `json:"colliding"`
	SimTime     float64   `json:"sim_time"`
	Timestamp   time.Time `json:"ts"` // TIME INDEX
}

// TelemetryTableName holds the table name used when writing telemetry to
// GreptimeDB. It defaults to "drone_telemetry" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var TelemetryTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "drone_telemetry"
}()

func (TelemetryRow) TableName() string {
	return TelemetryTableName
}

// CollisionRow records one proximity-conflict transition.
type CollisionRow struct {
	SimID     string    `json:"sim_id"`   // TAG
	DroneID   string    `json:"drone_id"` // TAG
	Event     string    `json:"event"`    // enter | exit
	Partners  []string  `json:"partners,omitempty"`
	SimTime   float64   `json:"sim_time"`
	Timestamp time.Time `json:"ts"` // TIME INDEX
}

// FleetStateRow captures per-interval scheduler state metrics, including the
// mean pairwise distance across all active drones.
type FleetStateRow struct {
	SimID             string    `json:"sim_id"` // TAG
	SimTime           float64   `json:"sim_time"`
	RealTime          float64   `json:"real_time"`
	Running           bool      `json:"running"`
	SpeedMultiplier   float64   `json:"speed_multiplier"`
	ActiveDrones      int       `json:"active_drones"`
	SpawnedPlans      int       `json:"spawned_plans"`
	TotalPlans        int       `json:"total_plans"`
	CollidingDrones   int       `json:"colliding_drones"`
	MeanPairwiseDistM float64   `json:"mean_pairwise_dist_m"`
	Negotiation       string    `json:"negotiation"`
	Timestamp         time.Time `json:"ts"` // TIME INDEX
}
