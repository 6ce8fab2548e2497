package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dronefleet-sim/internal/config"
	"dronefleet-sim/internal/fleet"
	"dronefleet-sim/internal/flightplan"
	"dronefleet-sim/internal/sim"
	"dronefleet-sim/internal/telemetry"
	"dronefleet-sim/internal/world"
)

func newTestServer(t *testing.T) (*Server, *sim.Scheduler) {
	t.Helper()
	cfg := &config.Config{
		Simulation: config.SimulationSettings{FixedStep: 1, SpeedMultiplier: 1},
		Telemetry:  config.TelemetrySettings{LogIntervalS: 1000},
	}
	registry := fleet.NewRegistry(nil, fleet.NewProfileTable(nil), nil, 10, 15)
	plans := []*flightplan.Plan{{
		ID: "FL001", OriginLat: 40.001, OriginLon: -74, DestLat: 40.002, DestLon: -74,
		Model: "Light Quadcopter",
	}}
	geo := world.NewGeoConverter(40, -74)
	sched := sim.NewScheduler("sim-test", cfg, registry, plans, geo, nil, nil, nil, nil)
	return NewServer(sched), sched
}

func TestStatusEndpoint(t *testing.T) {
	srv, sched := newTestServer(t)
	sched.Tick(1)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats telemetry.FleetStateRow
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if stats.SimID != "sim-test" || stats.ActiveDrones != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestDronesEndpoint(t *testing.T) {
	srv, sched := newTestServer(t)
	sched.Tick(1)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/drones", nil))
	var drones []fleet.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &drones); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(drones) != 1 || drones[0].Model != "Light Quadcopter" {
		t.Errorf("unexpected drones %+v", drones)
	}
}

func TestPlansEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans", nil))
	var plans []flightplan.Plan
	if err := json.Unmarshal(rec.Body.Bytes(), &plans); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(plans) != 1 || plans[0].ID != "FL001" {
		t.Errorf("unexpected plans %+v", plans)
	}
}

func TestPauseResume(t *testing.T) {
	srv, sched := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/pause", nil))
	if rec.Code != http.StatusOK || sched.Running() {
		t.Fatalf("pause failed: code=%d running=%v", rec.Code, sched.Running())
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/resume", nil))
	if rec.Code != http.StatusOK || !sched.Running() {
		t.Fatalf("resume failed: code=%d running=%v", rec.Code, sched.Running())
	}
}

func TestPauseRequiresPost(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pause", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestSpeedEndpoint(t *testing.T) {
	srv, sched := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/speed?value=2.5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if sched.Speed() != 2.5 {
		t.Errorf("expected speed 2.5, got %v", sched.Speed())
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/speed?value=-1", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a negative multiplier, got %d", rec.Code)
	}
}

func TestHeadlessEndpoint(t *testing.T) {
	srv, sched := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/headless?value=true", nil))
	if rec.Code != http.StatusOK || !sched.Headless() {
		t.Fatalf("headless toggle failed: code=%d headless=%v", rec.Code, sched.Headless())
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/headless?value=banana", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a non-boolean value, got %d", rec.Code)
	}
}
