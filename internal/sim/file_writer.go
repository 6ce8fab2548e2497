package sim

import (
	"encoding/json"
	"os"

	"dronefleet-sim/internal/telemetry"
)

// FileWriter writes telemetry, collision, and state rows to JSONL files.
type FileWriter struct {
	teleFile  *os.File
	collFile  *os.File
	stateFile *os.File
	teleEnc   *json.Encoder
	collEnc   *json.Encoder
	stateEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. collisionPath or statePath may be
// empty to skip those logs.
func NewFileWriter(telemetryPath, collisionPath, statePath string) (*FileWriter, error) {
	tf, err := os.Create(telemetryPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{teleFile: tf, teleEnc: json.NewEncoder(tf)}
	if collisionPath != "" {
		cf, err := os.Create(collisionPath)
		if err != nil {
			tf.Close()
			return nil, err
		}
		fw.collFile = cf
		fw.collEnc = json.NewEncoder(cf)
	}
	if statePath != "" {
		sf, err := os.Create(statePath)
		if err != nil {
			if fw.collFile != nil {
				fw.collFile.Close()
			}
			tf.Close()
			return nil, err
		}
		fw.stateFile = sf
		fw.stateEnc = json.NewEncoder(sf)
	}
	return fw, nil
}

// Write logs a single telemetry row.
func (f *FileWriter) Write(row telemetry.TelemetryRow) error {
	return f.teleEnc.Encode(row)
}

// WriteBatch logs multiple telemetry rows.
func (f *FileWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteCollision logs a single collision row, if enabled.
func (f *FileWriter) WriteCollision(row telemetry.CollisionRow) error {
	if f.collEnc == nil {
		return nil
	}
	return f.collEnc.Encode(row)
}

// WriteCollisions logs multiple collision rows.
func (f *FileWriter) WriteCollisions(rows []telemetry.CollisionRow) error {
	for _, r := range rows {
		if err := f.WriteCollision(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteState logs a fleet state row, if enabled.
func (f *FileWriter) WriteState(row telemetry.FleetStateRow) error {
	if f.stateEnc == nil {
		return nil
	}
	return f.stateEnc.Encode(row)
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.teleFile != nil {
		if e := f.teleFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.collFile != nil {
		if e := f.collFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.stateFile != nil {
		if e := f.stateFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
