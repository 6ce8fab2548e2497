package sim

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dronefleet-sim/internal/telemetry"
)

func countJSONLines(t *testing.T, path string, v func() any) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if err := json.Unmarshal(scanner.Bytes(), v()); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", n+1, err)
		}
		n++
	}
	return n
}

func TestFileWriterWritesJSONL(t *testing.T) {
	dir := t.TempDir()
	telePath := filepath.Join(dir, "telemetry.jsonl")
	collPath := filepath.Join(dir, "collisions.jsonl")
	statePath := filepath.Join(dir, "state.jsonl")

	fw, err := NewFileWriter(telePath, collPath, statePath)
	if err != nil {
		t.Fatalf("NewFileWriter failed: %v", err)
	}

	now := time.Now().UTC()
	fw.Write(telemetry.TelemetryRow{DroneID: "d1", Timestamp: now})
	fw.WriteBatch([]telemetry.TelemetryRow{{DroneID: "d2"}, {DroneID: "d3"}})
	fw.WriteCollision(telemetry.CollisionRow{DroneID: "d1", Event: "enter"})
	fw.WriteState(telemetry.FleetStateRow{SimID: "s1"})
	if err := fw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if n := countJSONLines(t, telePath, func() any { return &telemetry.TelemetryRow{} }); n != 3 {
		t.Errorf("expected 3 telemetry lines, got %d", n)
	}
	if n := countJSONLines(t, collPath, func() any { return &telemetry.CollisionRow{} }); n != 1 {
		t.Errorf("expected 1 collision line, got %d", n)
	}
	if n := countJSONLines(t, statePath, func() any { return &telemetry.FleetStateRow{} }); n != 1 {
		t.Errorf("expected 1 state line, got %d", n)
	}
}

func TestFileWriterOptionalSinks(t *testing.T) {
	telePath := filepath.Join(t.TempDir(), "telemetry.jsonl")
	fw, err := NewFileWriter(telePath, "", "")
	if err != nil {
		t.Fatalf("NewFileWriter failed: %v", err)
	}
	defer fw.Close()

	if err := fw.WriteCollision(telemetry.CollisionRow{}); err != nil {
		t.Errorf("disabled collision sink should be a no-op, got %v", err)
	}
	if err := fw.WriteState(telemetry.FleetStateRow{}); err != nil {
		t.Errorf("disabled state sink should be a no-op, got %v", err)
	}
}
