package fleet

import (
	"fmt"
	"log/slog"

	"dronefleet-sim/internal/world"
)

// JourneyPhase tracks progress through a round-trip mission.
type JourneyPhase int

const (
	JourneyOutbound JourneyPhase = iota
	JourneyReturning
	JourneyCompleted
)

func (p JourneyPhase) String() string {
	switch p {
	case JourneyOutbound:
		return "outbound"
	case JourneyReturning:
		return "returning"
	case JourneyCompleted:
		return "completed"
	}
	return "unknown"
}

// NegotiationPhase tracks whether an external route has been obtained or
// synthesized.
type NegotiationPhase int

const (
	AwaitingRoute NegotiationPhase = iota
	RouteFinalized
)

func (p NegotiationPhase) String() string {
	if p == AwaitingRoute {
		return "awaiting_route"
	}
	return "route_finalized"
}

// Completion reasons reported once a drone's mission ends.
const (
	ReasonMissionComplete = "mission_complete"
	ReasonBatteryDepleted = "battery_depleted"
	ReasonRangeExceeded   = "range_exceeded"
	ReasonEmptyRoute      = "empty_route"
)

// RouteRequest carries the parameters of one route negotiation.
type RouteRequest struct {
	DroneID    string
	Model      string
	Start      world.Vec3
	End        world.Vec3
	BatteryPct float64
	MaxSpeed   float64
	MaxRange   float64
}

// PendingRoute is a resolvable slot for one outstanding route request. The
// transport resolves it with at most one correlated response.
type PendingRoute interface {
	// Poll returns the negotiated route once available. ok is false while
	// the request is still outstanding.
	Poll() (Route, bool)
	// Cancel discards the slot; a late response is dropped by the transport.
	Cancel()
}

// RouteNegotiator issues asynchronous route requests to the routing service.
type RouteNegotiator interface {
	RequestRoute(req RouteRequest) (PendingRoute, error)
}

// arrivalThresholdM is the distance below which the current waypoint counts
// as reached.
const arrivalThresholdM = 5.0

// DefaultCollisionRadiusM is the per-drone proximity radius.
const DefaultCollisionRadiusM = 15.0

// Drone owns one vehicle's identity, route, battery, and journey phase.
// All mutation happens on the scheduling goroutine.
type Drone struct {
	id      string
	model   string
	profile Profile

	position world.Vec3
	speed    float64

	route         Route
	waypointIndex int

	journey     JourneyPhase
	negotiation NegotiationPhase

	origin      world.Vec3
	destination world.Vec3

	battery          float64 // Wh remaining
	distanceTraveled float64 // m
	flightTime       float64 // s

	collisionRadius float64
	colliding       bool
	partners        map[string]struct{}

	pending         PendingRoute
	awaitingElapsed float64
	requestTimeout  float64

	completionReason string
	log              *slog.Logger
}

// NewDrone creates a drone at origin with a full battery and issues its
// route request. A nil negotiator synthesizes the default route immediately.
func NewDrone(id string, prof Profile, origin, dest world.Vec3, negotiator RouteNegotiator, requestTimeoutS float64, log *slog.Logger) *Drone {
	if log == nil {
		log = slog.Default()
	}
	d := &Drone{
		id:              id,
		model:           prof.Model,
		profile:         prof,
		position:        origin,
		origin:          origin,
		destination:     dest,
		battery:         prof.BatteryCapacity,
		collisionRadius: DefaultCollisionRadiusM,
		partners:        make(map[string]struct{}),
		requestTimeout:  requestTimeoutS,
		log:             log,
	}
	if negotiator == nil {
		d.adoptRoute(nil)
		return d
	}
	pending, err := negotiator.RequestRoute(RouteRequest{
		DroneID:    id,
		Model:      prof.Model,
		Start:      origin,
		End:        dest,
		BatteryPct: d.BatteryPercent(),
		MaxSpeed:   prof.MaxSpeed,
		MaxRange:   prof.MaxRange,
	})
	if err != nil {
		// Treated like an eventual timeout: the drone waits out the
		// negotiation window and falls back to the default route.
		log.Warn("route request failed", "drone_id", id, "err", err)
		return d
	}
	d.pending = pending
	return d
}

// Update advances the drone by delta simulated seconds.
func (d *Drone) Update(delta float64) {
	if d.journey == JourneyCompleted {
		return
	}
	if d.negotiation == AwaitingRoute {
		d.updateAwaiting(delta)
		if d.negotiation == AwaitingRoute || d.journey == JourneyCompleted {
			return
		}
	}

	d.flightTime += delta

	if d.waypointIndex < len(d.route) {
		d.moveTowardWaypoint(delta)
	}

	if d.waypointIndex >= len(d.route) {
		switch d.journey {
		case JourneyOutbound:
			d.route = ReturnRoute(d.route, d.origin, d.destination)
			d.waypointIndex = 0
			d.journey = JourneyReturning
			d.log.Info("return journey started", "drone_id", d.id, "waypoints", len(d.route))
		case JourneyReturning:
			d.complete(ReasonMissionComplete)
			return
		}
	}

	// Completion triggers run every tick, independent of waypoint logic.
	if d.battery <= 0 {
		d.complete(ReasonBatteryDepleted)
		return
	}
	if d.distanceTraveled > d.profile.MaxRange {
		d.complete(ReasonRangeExceeded)
	}
}

// updateAwaiting polls the pending route and enforces the negotiation
// timeout. The drone does not move while awaiting a route.
func (d *Drone) updateAwaiting(delta float64) {
	if d.pending != nil {
		if route, ok := d.pending.Poll(); ok {
			d.pending = nil
			d.adoptRoute(route)
			return
		}
	}
	d.awaitingElapsed += delta
	if d.awaitingElapsed >= d.requestTimeout {
		if d.pending != nil {
			d.pending.Cancel()
			d.pending = nil
		}
		d.log.Info("route negotiation timed out, using default route", "drone_id", d.id)
		d.adoptRoute(nil)
	}
}

// adoptRoute finalizes negotiation with the given route, synthesizing the
// default route when it is empty. An empty result completes the drone.
func (d *Drone) adoptRoute(route Route) {
	if len(route) == 0 {
		route = DefaultRoute(d.origin, d.destination, d.profile)
	}
	route.ClampSpeeds(d.profile.MaxSpeed)
	d.route = route
	d.waypointIndex = 0
	d.negotiation = RouteFinalized
	if len(d.route) == 0 {
		d.complete(ReasonEmptyRoute)
	}
}

func (d *Drone) moveTowardWaypoint(delta float64) {
	wp := d.route[d.waypointIndex]
	speed := wp.Speed
	if speed > d.profile.MaxSpeed {
		speed = d.profile.MaxSpeed
	}

	newPos, moved := d.position.MoveToward(wp.Position, speed*delta)
	if moved < speed*delta {
		// Snapped onto the waypoint this frame.
		speed = 0
	}
	d.position = newPos
	d.speed = speed
	d.distanceTraveled += moved

	d.drainBattery(delta)

	if d.position.DistanceTo(wp.Position) < arrivalThresholdM {
		d.waypointIndex++
	}
}

// drainBattery applies the speed-dependent power draw over delta seconds.
func (d *Drone) drainBattery(delta float64) {
	ratio := 0.0
	if d.profile.MaxSpeed > 0 {
		ratio = d.speed / d.profile.MaxSpeed
	}
	d.battery -= d.profile.PowerDraw * (1 + 0.5*ratio) * (delta / 3600)
	if d.battery < 0 {
		d.battery = 0
	}
}

func (d *Drone) complete(reason string) {
	d.journey = JourneyCompleted
	d.speed = 0
	d.completionReason = reason
	d.log.Info("mission ended", "drone_id", d.id, "reason", reason,
		"distance_m", fmt.Sprintf("%.0f", d.distanceTraveled),
		"flight_time_s", fmt.Sprintf("%.0f", d.flightTime))
}

// ID returns the drone's identifier.
func (d *Drone) ID() string { return d.id }

// Model returns the drone's model tag.
func (d *Drone) Model() string { return d.model }

// Profile returns the drone's performance profile.
func (d *Drone) Profile() Profile { return d.profile }

// Position returns the drone's current position.
func (d *Drone) Position() world.Vec3 { return d.position }

// Journey returns the journey phase.
func (d *Drone) Journey() JourneyPhase { return d.journey }

// Negotiation returns the negotiation phase.
func (d *Drone) Negotiation() NegotiationPhase { return d.negotiation }

// CompletionReason reports why the mission ended, or "" while flying.
func (d *Drone) CompletionReason() string { return d.completionReason }

// BatteryPercent returns the remaining battery as a percentage of capacity.
func (d *Drone) BatteryPercent() float64 {
	if d.profile.BatteryCapacity <= 0 {
		return 0
	}
	return 100 * d.battery / d.profile.BatteryCapacity
}

// Colliding reports whether the drone is currently within another drone's
// combined collision radius.
func (d *Drone) Colliding() bool { return d.colliding }

// CollisionPartners returns the identifiers of all current conflict partners.
func (d *Drone) CollisionPartners() []string {
	ids := make([]string, 0, len(d.partners))
	for id := range d.partners {
		ids = append(ids, id)
	}
	return ids
}

// CurrentWaypoint describes the waypoint the drone is flying toward.
func (d *Drone) CurrentWaypoint() string {
	if d.waypointIndex >= len(d.route) {
		return ""
	}
	wp := d.route[d.waypointIndex]
	return fmt.Sprintf("%d/%d %s", d.waypointIndex+1, len(d.route), wp.Description)
}

// RouteSummary lists the waypoint descriptions of the active route.
func (d *Drone) RouteSummary() []string {
	out := make([]string, len(d.route))
	for i, wp := range d.route {
		out[i] = wp.Description
	}
	return out
}

// Snapshot returns a read-only copy of the drone's observable state.
func (d *Drone) Snapshot() Snapshot {
	return Snapshot{
		ID:               d.id,
		Model:            d.model,
		Position:         d.position,
		Speed:            d.speed,
		BatteryWh:        d.battery,
		BatteryPct:       d.BatteryPercent(),
		Journey:          d.journey.String(),
		Negotiation:      d.negotiation.String(),
		WaypointIndex:    d.waypointIndex,
		RouteLength:      len(d.route),
		CurrentWaypoint:  d.CurrentWaypoint(),
		DistanceTraveled: d.distanceTraveled,
		FlightTime:       d.flightTime,
		Colliding:        d.colliding,
		Partners:         d.CollisionPartners(),
		CompletionReason: d.completionReason,
	}
}

// Snapshot is a read-only view of one drone for external consumers.
type Snapshot struct {
	ID               string     `json:"id"`
	Model            string     `json:"model"`
	Position         world.Vec3 `json:"position"`
	Speed            float64    `json:"speed"`
	BatteryWh        float64    `json:"battery_wh"`
	BatteryPct       float64    `json:"battery_pct"`
	Journey          string     `json:"journey"`
	Negotiation      string     `json:"negotiation"`
	WaypointIndex    int        `json:"waypoint_index"`
	RouteLength      int        `json:"route_length"`
	CurrentWaypoint  string     `json:"current_waypoint,omitempty"`
	DistanceTraveled float64    `json:"distance_m"`
	FlightTime       float64    `json:"flight_time_s"`
	Colliding        bool       `json:"colliding"`
	Partners         []string   `json:"collision_partners,omitempty"`
	CompletionReason string     `json:"completion_reason,omitempty"`
}
