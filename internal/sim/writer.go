package sim

import "dronefleet-sim/internal/telemetry"

// TelemetryWriter is an interface to support different output sinks.
type TelemetryWriter interface {
	Write(telemetry.TelemetryRow) error
}

// CollisionWriter handles collision enter/exit events.
type CollisionWriter interface {
	WriteCollision(telemetry.CollisionRow) error
}

// StateWriter handles periodic fleet state rows.
type StateWriter interface {
	WriteState(telemetry.FleetStateRow) error
}

// Optional: writers can also support batch mode.
type batchWriter interface {
	WriteBatch([]telemetry.TelemetryRow) error
}

// Optional: collision writers may support batch mode.
type batchCollisionWriter interface {
	WriteCollisions([]telemetry.CollisionRow) error
}
