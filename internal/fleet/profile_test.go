package fleet

import (
	"testing"

	"dronefleet-sim/internal/config"
)

func TestResolveBuiltinProfile(t *testing.T) {
	tbl := NewProfileTable(nil)
	p, ok := tbl.Resolve("Heavy Lift Octocopter")
	if !ok {
		t.Fatal("expected built-in model to resolve")
	}
	if p.MaxSpeed != 15 || p.BatteryCapacity != 620 {
		t.Errorf("unexpected profile %+v", p)
	}
}

func TestResolveUnknownFallsBackToDefault(t *testing.T) {
	tbl := NewProfileTable(nil)
	p, ok := tbl.Resolve("Mystery Drone")
	if ok {
		t.Error("unknown model should report ok=false")
	}
	if p.Model != DefaultModel {
		t.Errorf("expected default model %q, got %q", DefaultModel, p.Model)
	}
}

func TestCustomProfileShadowsBuiltin(t *testing.T) {
	tbl := NewProfileTable([]config.ProfileSpec{{
		Model:           "Light Quadcopter",
		MaxSpeed:        30,
		MaxRange:        40000,
		BatteryCapacity: 200,
		PowerDraw:       100,
		CruiseAltitude:  90,
	}})
	p, ok := tbl.Resolve("Light Quadcopter")
	if !ok {
		t.Fatal("expected custom model to resolve")
	}
	if p.MaxSpeed != 30 || p.CruiseAltitude != 90 {
		t.Errorf("custom profile should shadow the built-in, got %+v", p)
	}
}

func TestCustomProfileCruiseAltitudeDefault(t *testing.T) {
	tbl := NewProfileTable([]config.ProfileSpec{{
		Model:           "Survey Quadcopter",
		MaxSpeed:        12,
		MaxRange:        10000,
		BatteryCapacity: 90,
		PowerDraw:       110,
	}})
	p, _ := tbl.Resolve("Survey Quadcopter")
	if p.CruiseAltitude != 50 {
		t.Errorf("expected cruise altitude default 50, got %v", p.CruiseAltitude)
	}
}
