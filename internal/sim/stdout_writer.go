// Writer implementation printing telemetry to STDOUT
package sim

import (
	"encoding/json"
	"fmt"

	"dronefleet-sim/internal/telemetry"
)

// StdoutWriter prints rows to STDOUT as JSON lines.
type StdoutWriter struct{}

// Write outputs a single telemetry row.
func (w *StdoutWriter) Write(row telemetry.TelemetryRow) error {
	data, _ := json.Marshal(row)
	fmt.Println(string(data))
	return nil
}

// WriteBatch outputs multiple telemetry rows.
func (w *StdoutWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteCollision prints a collision event to STDOUT.
func (w *StdoutWriter) WriteCollision(row telemetry.CollisionRow) error {
	data, _ := json.Marshal(row)
	fmt.Println(string(data))
	return nil
}

// WriteCollisions prints multiple collision events.
func (w *StdoutWriter) WriteCollisions(rows []telemetry.CollisionRow) error {
	for _, r := range rows {
		_ = w.WriteCollision(r)
	}
	return nil
}

// WriteState prints a fleet state row to STDOUT.
func (w *StdoutWriter) WriteState(row telemetry.FleetStateRow) error {
	data, _ := json.Marshal(row)
	fmt.Println(string(data))
	return nil
}
