// Package fleet implements the drone state machine, the route model, the
// pairwise collision detector, and the registry that owns all live drones.
package fleet

import "dronefleet-sim/internal/config"

// Profile holds the fixed physical constants for one drone model.
type Profile struct {
	Model           string
	MaxSpeed        float64 // m/s
	MaxRange        float64 // m
	BatteryCapacity float64 // Wh
	PowerDraw       float64 // W
	PayloadCapacity float64 // kg
	CruiseAltitude  float64 // m
}

// DefaultModel is the fallback for unknown model tags.
const DefaultModel = "Light Quadcopter"

// Built-in performance profiles. All values strictly positive.
var builtinProfiles = map[string]Profile{
	"Light Quadcopter": {
		Model:           "Light Quadcopter",
		MaxSpeed:        20,
		MaxRange:        25000,
		BatteryCapacity: 120,
		PowerDraw:       180,
		PayloadCapacity: 2,
		CruiseAltitude:  60,
	},
	"Heavy Lift Octocopter": {
		Model:           "Heavy Lift Octocopter",
		MaxSpeed:        15,
		MaxRange:        18000,
		BatteryCapacity: 620,
		PowerDraw:       950,
		PayloadCapacity: 20,
		CruiseAltitude:  80,
	},
	"Fixed Wing VTOL": {
		Model:           "Fixed Wing VTOL",
		MaxSpeed:        35,
		MaxRange:        120000,
		BatteryCapacity: 800,
		PowerDraw:       400,
		PayloadCapacity: 8,
		CruiseAltitude:  120,
	},
}

// ProfileTable resolves model tags to performance profiles. Custom profiles
// from configuration shadow the built-ins; unknown tags resolve to the
// default model in a single redirection.
type ProfileTable struct {
	custom map[string]Profile
}

// NewProfileTable builds a table from configured profile specs.
func NewProfileTable(specs []config.ProfileSpec) *ProfileTable {
	t := &ProfileTable{custom: make(map[string]Profile, len(specs))}
	for _, s := range specs {
		if s.CruiseAltitude == 0 {
			s.CruiseAltitude = 50
		}
		t.custom[s.Model] = Profile{
			Model:           s.Model,
			MaxSpeed:        s.MaxSpeed,
			MaxRange:        s.MaxRange,
			BatteryCapacity: s.BatteryCapacity,
			PowerDraw:       s.PowerDraw,
			PayloadCapacity: s.PayloadCapacity,
			CruiseAltitude:  s.CruiseAltitude,
		}
	}
	return t
}

// Resolve returns the profile for a model tag. The second return value is
// false when the tag was unknown and the default profile was substituted.
func (t *ProfileTable) Resolve(model string) (Profile, bool) {
	if t != nil {
		if p, ok := t.custom[model]; ok {
			return p, true
		}
	}
	if p, ok := builtinProfiles[model]; ok {
		return p, true
	}
	return builtinProfiles[DefaultModel], false
}
