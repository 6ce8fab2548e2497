package fleet

import (
	"fmt"
	"math"

	"dronefleet-sim/internal/world"
)

// Waypoint is a target position with an associated altitude, speed, and
// human-readable description.
type Waypoint struct {
	Position    world.Vec3
	Altitude    float64
	Speed       float64
	Description string
}

// Route is the ordered waypoint sequence a drone follows.
type Route []Waypoint

// ClampSpeeds caps every waypoint's target speed at maxSpeed.
func (r Route) ClampSpeeds(maxSpeed float64) {
	for i := range r {
		if r[i].Speed > maxSpeed {
			r[i].Speed = maxSpeed
		}
	}
}

// cruiseSpacingM is the rough spacing between intermediate cruise waypoints
// on synthesized routes.
const cruiseSpacingM = 10000.0

// minCruiseDistanceM is the origin-destination distance above which
// intermediate cruise waypoints are inserted.
const minCruiseDistanceM = 5000.0

// DefaultRoute synthesizes a route from origin to dest for the given profile.
// It is a deterministic, pure function of its inputs: takeoff above the
// origin at cruise altitude, intermediate cruise waypoints roughly every
// 10 km for legs longer than 5 km, an approach above the destination, and a
// landing waypoint at the destination's exact altitude.
func DefaultRoute(origin, dest world.Vec3, prof Profile) Route {
	cruiseAlt := prof.CruiseAltitude
	dist := origin.DistanceTo(dest)

	route := Route{{
		Position:    world.Vec3{X: origin.X, Y: cruiseAlt, Z: origin.Z},
		Altitude:    cruiseAlt,
		Speed:       0.6 * prof.MaxSpeed,
		Description: "Takeoff",
	}}

	if dist > minCruiseDistanceM {
		n := int(math.Ceil(dist / cruiseSpacingM))
		for i := 1; i <= n; i++ {
			t := float64(i) / float64(n+1)
			p := origin.Lerp(dest, t)
			route = append(route, Waypoint{
				Position:    world.Vec3{X: p.X, Y: cruiseAlt, Z: p.Z},
				Altitude:    cruiseAlt,
				Speed:       prof.MaxSpeed,
				Description: fmt.Sprintf("Cruise %d", i),
			})
		}
	}

	route = append(route,
		Waypoint{
			Position:    world.Vec3{X: dest.X, Y: cruiseAlt, Z: dest.Z},
			Altitude:    cruiseAlt,
			Speed:       0.7 * prof.MaxSpeed,
			Description: "Approach",
		},
		Waypoint{
			Position:    dest,
			Altitude:    dest.Y,
			Speed:       0.4 * prof.MaxSpeed,
			Description: "Landing",
		},
	)
	return route
}

// ReturnRoute mirrors an outbound route for the journey home. The outbound
// route is walked in reverse; each waypoint is placed on the
// destination-to-origin line at 1 - p, where p is the waypoint's original
// fractional progress from the origin along the origin-destination line.
// Altitude and speed carry over unchanged.
func ReturnRoute(outbound Route, origin, dest world.Vec3) Route {
	axis := dest.Sub(origin)
	total := axis.Length()
	ret := make(Route, 0, len(outbound))
	for i := len(outbound) - 1; i >= 0; i-- {
		wp := outbound[i]
		p := 0.0
		if total > 0 {
			rel := wp.Position.Sub(origin)
			p = (rel.X*axis.X + rel.Y*axis.Y + rel.Z*axis.Z) / (total * total)
			p = math.Max(0, math.Min(1, p))
		}
		pos := dest.Lerp(origin, 1-p)
		pos.Y = wp.Position.Y
		ret = append(ret, Waypoint{
			Position:    pos,
			Altitude:    wp.Altitude,
			Speed:       wp.Speed,
			Description: "Return " + wp.Description,
		})
	}
	return ret
}
