package main

import (
	"log/slog"
	"os"

	"dronefleet-sim/internal/sim"
)

// newWriters sets up the telemetry, collision, and state writers based on
// flags and env vars. When a TUI is given it takes over the console sink so
// plain rows do not tear the alternate screen. The returned cleanup closes
// any file resources.
func newWriters(printOnly bool, logFile string, tui *sim.TUIWriter, log *slog.Logger) (sim.TelemetryWriter, sim.CollisionWriter, sim.StateWriter, func(), error) {
	cleanup := func() {}

	var (
		tw  sim.TelemetryWriter
		cw  sim.CollisionWriter
		sw  sim.StateWriter
		err error
	)
	if tui != nil && (printOnly || os.Getenv("GREPTIMEDB_ENDPOINT") == "") {
		tw, cw, sw = tui, tui, tui
	} else {
		tw, cw, sw, err = baseWriters(printOnly, log)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if tui != nil {
			mw := sim.NewMultiWriter(
				[]sim.TelemetryWriter{tw, tui},
				[]sim.CollisionWriter{cw, tui},
				[]sim.StateWriter{sw, tui},
			)
			tw, cw, sw = mw, mw, mw
		}
	}
	if logFile == "" {
		return tw, cw, sw, cleanup, nil
	}

	fw, err := sim.NewFileWriter(logFile, logFile+".collisions", logFile+".state")
	if err != nil {
		return nil, nil, nil, nil, err
	}
	mw := sim.NewMultiWriter(
		[]sim.TelemetryWriter{tw, fw},
		[]sim.CollisionWriter{cw, fw},
		[]sim.StateWriter{sw, fw},
	)
	cleanup = func() { fw.Close() }
	return mw, mw, mw, cleanup, nil
}

// baseWriters chooses the underlying sink: GreptimeDB when an endpoint is
// configured, colored STDOUT otherwise.
func baseWriters(printOnly bool, log *slog.Logger) (sim.TelemetryWriter, sim.CollisionWriter, sim.StateWriter, error) {
	if printOnly || os.Getenv("GREPTIMEDB_ENDPOINT") == "" {
		w := sim.NewColorStdoutWriter()
		return w, w, w, nil
	}

	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	database := os.Getenv("GREPTIMEDB_DATABASE")
	if database == "" {
		database = "public"
	}
	teleTable := os.Getenv("GREPTIMEDB_TABLE")
	collTable := os.Getenv("COLLISION_TABLE")
	if collTable == "" {
		collTable = "collision_events"
	}
	stateTable := os.Getenv("SIM_STATE_TABLE")
	if stateTable == "" {
		stateTable = "fleet_state"
	}
	w, err := sim.NewGreptimeDBWriter(endpoint, database, teleTable, collTable, stateTable, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return w, w, w, nil
}

// newTelemetryWriter creates a telemetry-only writer for replay. Print-only
// replays emit JSONL so logs can be piped onward unchanged.
func newTelemetryWriter(printOnly bool, log *slog.Logger) (sim.TelemetryWriter, error) {
	if printOnly || os.Getenv("GREPTIMEDB_ENDPOINT") == "" {
		return &sim.StdoutWriter{}, nil
	}
	tw, _, _, _, err := newWriters(false, "", nil, log)
	return tw, err
}
