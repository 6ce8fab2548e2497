package sim

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"dronefleet-sim/internal/telemetry"
)

func TestReplayLog(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := 0; i < 3; i++ {
		enc.Encode(telemetry.TelemetryRow{
			DroneID:   "d1",
			SimTime:   float64(i),
			Timestamp: base.Add(time.Duration(i) * time.Millisecond),
		})
	}

	w := &MockWriter{}
	if err := ReplayLog(&buf, w, 1000); err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if len(w.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(w.Rows))
	}
	for i, row := range w.Rows {
		if row.SimTime != float64(i) {
			t.Errorf("rows out of order: %v at %d", row.SimTime, i)
		}
	}
}

func TestReplayLogNoDelayWhenSpeedZero(t *testing.T) {
	base := time.Now().UTC()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.Encode(telemetry.TelemetryRow{Timestamp: base})
	enc.Encode(telemetry.TelemetryRow{Timestamp: base.Add(time.Hour)})

	w := &MockWriter{}
	start := time.Now()
	if err := ReplayLog(&buf, w, 0); err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("speed 0 must not sleep between rows")
	}
	if len(w.Rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(w.Rows))
	}
}

func TestReplayLogRejectsGarbage(t *testing.T) {
	w := &MockWriter{}
	if err := ReplayLog(strings.NewReader("{not json"), w, 1); err == nil {
		t.Error("expected an error for malformed input")
	}
}

func TestReplayLogFileMissing(t *testing.T) {
	if err := ReplayLogFile("does-not-exist.jsonl", &MockWriter{}, 1); err == nil {
		t.Error("expected an error for a missing file")
	}
}
