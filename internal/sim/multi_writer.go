package sim

import "dronefleet-sim/internal/telemetry"

// MultiWriter fans out telemetry, collision, and state rows to multiple
// writers.
type MultiWriter struct {
	telewriters  []TelemetryWriter
	collwriters  []CollisionWriter
	statewriters []StateWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(tws []TelemetryWriter, cws []CollisionWriter, sws []StateWriter) *MultiWriter {
	return &MultiWriter{telewriters: tws, collwriters: cws, statewriters: sws}
}

// Write sends a telemetry row to all writers.
func (mw *MultiWriter) Write(row telemetry.TelemetryRow) error {
	for _, w := range mw.telewriters {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple telemetry rows to all writers, using batch mode
// where supported.
func (mw *MultiWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	for _, w := range mw.telewriters {
		if bw, ok := w.(batchWriter); ok {
			if err := bw.WriteBatch(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.Write(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteCollision sends a collision row to all collision writers.
func (mw *MultiWriter) WriteCollision(row telemetry.CollisionRow) error {
	for _, w := range mw.collwriters {
		if err := w.WriteCollision(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteCollisions sends multiple collision rows to all collision writers,
// using batch mode where supported.
func (mw *MultiWriter) WriteCollisions(rows []telemetry.CollisionRow) error {
	for _, w := range mw.collwriters {
		if bw, ok := w.(batchCollisionWriter); ok {
			if err := bw.WriteCollisions(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.WriteCollision(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteState sends a fleet state row to all state writers.
func (mw *MultiWriter) WriteState(row telemetry.FleetStateRow) error {
	for _, w := range mw.statewriters {
		if err := w.WriteState(row); err != nil {
			return err
		}
	}
	return nil
}
