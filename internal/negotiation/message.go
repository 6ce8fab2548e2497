// Package negotiation implements the asynchronous route negotiation client
// for the external routing service.
package negotiation

import (
	"dronefleet-sim/internal/fleet"
	"dronefleet-sim/internal/world"
)

// The routing service's ground plane is spanned by x and y with z vertical,
// while the simulation is Y-up. Outbound positions therefore swap the
// simulation's Y and Z. Response waypoints are already emitted by the
// service in the simulation's Y-up convention and are taken as-is.

type wirePosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func toWire(p world.Vec3) wirePosition {
	return wirePosition{X: p.X, Y: p.Z, Z: p.Y}
}

type routeRequestMsg struct {
	Type              string       `json:"type"`
	DroneID           string       `json:"drone_id"`
	Model             string       `json:"model"`
	StartPosition     wirePosition `json:"start_position"`
	EndPosition       wirePosition `json:"end_position"`
	BatteryPercentage float64      `json:"battery_percentage"`
	MaxSpeed          float64      `json:"max_speed"`
	MaxRange          float64      `json:"max_range"`
}

func newRouteRequestMsg(req fleet.RouteRequest) routeRequestMsg {
	return routeRequestMsg{
		Type:              "request_route",
		DroneID:           req.DroneID,
		Model:             req.Model,
		StartPosition:     toWire(req.Start),
		EndPosition:       toWire(req.End),
		BatteryPercentage: req.BatteryPct,
		MaxSpeed:          req.MaxSpeed,
		MaxRange:          req.MaxRange,
	}
}

type wireWaypoint struct {
	X           *float64 `json:"x"`
	Y           *float64 `json:"y"`
	Z           *float64 `json:"z"`
	Altitude    *float64 `json:"altitude"`
	Speed       *float64 `json:"speed"`
	Description string   `json:"description"`
}

type routeResponseMsg struct {
	Type    string         `json:"type"`
	DroneID string         `json:"drone_id"`
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Route   []wireWaypoint `json:"route"`
}

// Defaults applied to missing response fields.
const (
	defaultWaypointAltitude    = 10.0
	defaultWaypointSpeedFactor = 0.8
	defaultWaypointDescription = "Server waypoint"
)

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// toRoute converts a response's waypoint list, filling in the documented
// defaults for missing fields. maxSpeed is the requesting drone's max speed.
func (m routeResponseMsg) toRoute(maxSpeed float64) fleet.Route {
	if m.Status != "" && m.Status != "success" {
		return nil
	}
	route := make(fleet.Route, 0, len(m.Route))
	for _, w := range m.Route {
		desc := w.Description
		if desc == "" {
			desc = defaultWaypointDescription
		}
		route = append(route, fleet.Waypoint{
			Position: world.Vec3{
				X: orDefault(w.X, 0),
				Y: orDefault(w.Y, defaultWaypointAltitude),
				Z: orDefault(w.Z, 0),
			},
			Altitude:    orDefault(w.Altitude, defaultWaypointAltitude),
			Speed:       orDefault(w.Speed, defaultWaypointSpeedFactor*maxSpeed),
			Description: desc,
		})
	}
	return route
}
