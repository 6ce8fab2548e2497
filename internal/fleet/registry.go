package fleet

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"dronefleet-sim/internal/world"
)

// Registry owns the set of live drones. Creation, updates, and eviction all
// happen on the scheduling goroutine; external consumers only ever see
// snapshot copies.
type Registry struct {
	log             *slog.Logger
	profiles        *ProfileTable
	negotiator      RouteNegotiator
	requestTimeoutS float64
	collisionRadius float64
	detector        *Detector

	drones []*Drone
}

// NewRegistry creates an empty registry. negotiator may be nil, in which
// case every drone synthesizes its default route immediately.
func NewRegistry(log *slog.Logger, profiles *ProfileTable, negotiator RouteNegotiator, requestTimeoutS, collisionRadiusM float64) *Registry {
	if log == nil {
		log = slog.Default()
	}
	if requestTimeoutS <= 0 {
		requestTimeoutS = 10
	}
	if collisionRadiusM <= 0 {
		collisionRadiusM = DefaultCollisionRadiusM
	}
	return &Registry{
		log:             log,
		profiles:        profiles,
		negotiator:      negotiator,
		requestTimeoutS: requestTimeoutS,
		collisionRadius: collisionRadiusM,
		detector:        NewDetector(),
	}
}

// Create instantiates a drone for a flight plan and takes ownership of it.
func (r *Registry) Create(planID, model string, origin, dest world.Vec3) *Drone {
	prof, known := r.profiles.Resolve(model)
	if !known {
		r.log.Warn("unknown drone model, using default profile",
			"plan_id", planID, "model", model, "default", DefaultModel)
	}
	id := fmt.Sprintf("%s-%s", planID, uuid.New().String()[:8])
	d := NewDrone(id, prof, origin, dest, r.negotiator, r.requestTimeoutS, r.log)
	d.collisionRadius = r.collisionRadius
	r.drones = append(r.drones, d)
	r.log.Info("drone created", "drone_id", id, "model", prof.Model,
		"origin", origin, "destination", dest)
	return d
}

// UpdateAll advances every live drone in registration order, then runs one
// collision pass over the post-movement positions. The returned events are
// this tick's collision enter/exit transitions.
func (r *Registry) UpdateAll(delta, simTime float64) []CollisionEvent {
	for _, d := range r.drones {
		d.Update(delta)
	}
	return r.detector.Scan(r.drones, simTime)
}

// EvictCompleted removes every completed drone and returns their final
// snapshots. Removal is deferred to this call so external consumers observe
// each drone's final state for one full tick.
func (r *Registry) EvictCompleted() []Snapshot {
	var evicted []Snapshot
	kept := r.drones[:0]
	for _, d := range r.drones {
		if d.journey == JourneyCompleted {
			evicted = append(evicted, d.Snapshot())
			continue
		}
		kept = append(kept, d)
	}
	r.drones = kept
	return evicted
}

// Len returns the number of live drones.
func (r *Registry) Len() int { return len(r.drones) }

// Snapshot returns read-only copies of all live drones.
func (r *Registry) Snapshot() []Snapshot {
	out := make([]Snapshot, len(r.drones))
	for i, d := range r.drones {
		out[i] = d.Snapshot()
	}
	return out
}
