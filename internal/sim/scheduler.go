// Scheduler advancing the logical clock and driving the per-tick passes.
package sim

import (
	"sync"
	"time"

	"dronefleet-sim/internal/config"
	"dronefleet-sim/internal/fleet"
	"dronefleet-sim/internal/flightplan"
	"dronefleet-sim/internal/telemetry"
	"dronefleet-sim/internal/world"
)

// ConnStateFunc reports the negotiation transport's connection state for the
// periodic fleet state row.
type ConnStateFunc func() string

// Scheduler owns the logical clock. Each tick performs spawn, one update
// pass over all live drones, the collision pass, telemetry emission, and
// eviction of completed drones, strictly in that order.
type Scheduler struct {
	simID     string
	registry  *fleet.Registry
	plans     []*flightplan.Plan
	geo       *world.GeoConverter
	connState ConnStateFunc

	writer          TelemetryWriter
	collisionWriter CollisionWriter
	stateWriter     StateWriter

	fixedStep   float64
	logInterval float64

	mu       sync.Mutex
	running  bool
	speed    float64
	headless bool
	simTime  float64
	realTime float64
	lastLog  float64
	spawned  int
	now      func() time.Time
}

// NewScheduler wires the registry, flight plans, and writers together.
// Writers other than the telemetry writer may be nil.
func NewScheduler(simID string, cfg *config.Config, registry *fleet.Registry, plans []*flightplan.Plan, geo *world.GeoConverter, writer TelemetryWriter, cw CollisionWriter, sw StateWriter, connState ConnStateFunc) *Scheduler {
	if connState == nil {
		connState = func() string { return "disabled" }
	}
	return &Scheduler{
		simID:           simID,
		registry:        registry,
		plans:           plans,
		geo:             geo,
		connState:       connState,
		writer:          writer,
		collisionWriter: cw,
		stateWriter:     sw,
		fixedStep:       cfg.Simulation.FixedStep,
		logInterval:     cfg.Telemetry.LogIntervalS,
		running:         !cfg.Simulation.StartPaused,
		speed:           cfg.Simulation.SpeedMultiplier,
		headless:        cfg.Simulation.Headless,
		now:             time.Now,
	}
}

// Tick advances logical time by one step. wallDelta is the wall-clock time
// elapsed since the previous tick; it only feeds the real-time counter.
// Tick is a no-op while paused.
func (s *Scheduler) Tick(wallDelta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	delta := s.fixedStep * s.speed
	s.simTime += delta
	s.realTime += wallDelta

	// Spawn every plan whose departure time has been reached. The guard is
	// monotonic: a plan overshot by a large step still spawns exactly once.
	for _, p := range s.plans {
		if p.Spawned || s.simTime < p.DepartureTime {
			continue
		}
		p.Spawned = true
		s.spawned++
		origin := s.geo.ToWorld(p.OriginLat, p.OriginLon, 0)
		dest := s.geo.ToWorld(p.DestLat, p.DestLon, 0)
		s.registry.Create(p.ID, p.Model, origin, dest)
	}

	events := s.registry.UpdateAll(delta, s.simTime)
	s.writeCollisions(events)

	if s.simTime-s.lastLog >= s.logInterval {
		s.lastLog = s.simTime
		s.writeSnapshot()
	}

	// Evicted drones get a final telemetry row so external consumers always
	// observe the completed state.
	for _, snap := range s.registry.EvictCompleted() {
		s.writeRow(snap)
	}
}

func (s *Scheduler) writeCollisions(events []fleet.CollisionEvent) {
	if s.collisionWriter == nil || len(events) == 0 {
		return
	}
	rows := make([]telemetry.CollisionRow, len(events))
	for i, ev := range events {
		rows[i] = telemetry.CollisionRow{
			SimID:     s.simID,
			DroneID:   ev.DroneID,
			Event:     ev.Type,
			Partners:  ev.Partners,
			SimTime:   ev.SimTime,
			Timestamp: s.now().UTC(),
		}
	}
	if bw, ok := s.collisionWriter.(batchCollisionWriter); ok {
		bw.WriteCollisions(rows)
		return
	}
	for _, r := range rows {
		s.collisionWriter.WriteCollision(r)
	}
}

func (s *Scheduler) writeSnapshot() {
	snaps := s.registry.Snapshot()
	batch := make([]telemetry.TelemetryRow, len(snaps))
	for i, snap := range snaps {
		batch[i] = s.toRow(snap)
	}
	if s.writer != nil && len(batch) > 0 {
		if bw, ok := s.writer.(batchWriter); ok {
			bw.WriteBatch(batch)
		} else {
			for _, row := range batch {
				s.writer.Write(row)
			}
		}
	}
	if s.stateWriter != nil {
		s.stateWriter.WriteState(s.stateRow(snaps))
	}
}

func (s *Scheduler) writeRow(snap fleet.Snapshot) {
	if s.writer == nil {
		return
	}
	s.writer.Write(s.toRow(snap))
}

func (s *Scheduler) toRow(snap fleet.Snapshot) telemetry.TelemetryRow {
	return telemetry.TelemetryRow{
		SimID:       s.simID,
		DroneID:     snap.ID,
		Model:       snap.Model,
		X:           snap.Position.X,
		Y:           snap.Position.Y,
		Z:           snap.Position.Z,
		SpeedMS:     snap.Speed,
		BatteryWh:   snap.BatteryWh,
		BatteryPct:  snap.BatteryPct,
		Journey:     snap.Journey,
		Negotiation: snap.Negotiation,
		Waypoint:    snap.CurrentWaypoint,
		DistanceM:   snap.DistanceTraveled,
		FlightTimeS: snap.FlightTime,
		Colliding:   snap.Colliding,
		SimTime:     s.simTime,
		Timestamp:   s.now().UTC(),
	}
}

func (s *Scheduler) stateRow(snaps []fleet.Snapshot) telemetry.FleetStateRow {
	colliding := 0
	for _, snap := range snaps {
		if snap.Colliding {
			colliding++
		}
	}
	return telemetry.FleetStateRow{
		SimID:             s.simID,
		SimTime:           s.simTime,
		RealTime:          s.realTime,
		Running:           s.running,
		SpeedMultiplier:   s.speed,
		ActiveDrones:      len(snaps),
		SpawnedPlans:      s.spawned,
		TotalPlans:        len(s.plans),
		CollidingDrones:   colliding,
		MeanPairwiseDistM: meanPairwiseDistance(snaps),
		Negotiation:       s.connState(),
		Timestamp:         s.now().UTC(),
	}
}

// meanPairwiseDistance averages the distance over all drone pairs. Zero or
// one active drone yields 0.
func meanPairwiseDistance(snaps []fleet.Snapshot) float64 {
	if len(snaps) < 2 {
		return 0
	}
	var sum float64
	var n int
	for i := 0; i < len(snaps); i++ {
		for j := i + 1; j < len(snaps); j++ {
			sum += snaps[i].Position.DistanceTo(snaps[j].Position)
			n++
		}
	}
	return sum / float64(n)
}

// Pause stops logical time. Ticks become no-ops until Resume.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// Resume restarts logical time.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
}

// Running reports whether the clock is advancing.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// SetSpeed updates the speed multiplier. Non-positive values are ignored.
func (s *Scheduler) SetSpeed(mult float64) {
	if mult <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speed = mult
}

// Speed returns the current speed multiplier.
func (s *Scheduler) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

// SetHeadless toggles the external visualization collaborator. It has no
// effect on simulation semantics.
func (s *Scheduler) SetHeadless(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headless = v
}

// Headless reports whether visualization is suppressed.
func (s *Scheduler) Headless() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headless
}

// SimTime returns the current logical time in seconds.
func (s *Scheduler) SimTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.simTime
}

// Snapshot returns read-only copies of all live drones.
func (s *Scheduler) Snapshot() []fleet.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Snapshot()
}

// Plans returns a copy of the flight-plan table.
func (s *Scheduler) Plans() []flightplan.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]flightplan.Plan, len(s.plans))
	for i, p := range s.plans {
		out[i] = *p
	}
	return out
}

// Stats returns the current fleet state row for external consumers.
func (s *Scheduler) Stats() telemetry.FleetStateRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateRow(s.registry.Snapshot())
}
