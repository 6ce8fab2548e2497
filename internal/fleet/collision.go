package fleet

import "sort"

// Collision event types.
const (
	CollisionEnter = "enter"
	CollisionExit  = "exit"
)

// CollisionEvent marks one drone's transition into or out of a proximity
// conflict.
type CollisionEvent struct {
	Type     string
	SimTime  float64
	DroneID  string
	Partners []string
}

// Detector performs the per-tick pairwise proximity pass. Two drones are in
// conflict when their center distance is below the sum of their collision
// radii. Detection only: no avoidance behavior is triggered.
type Detector struct {
	prev map[string]bool
}

// NewDetector returns a detector with no collision history.
func NewDetector() *Detector {
	return &Detector{prev: make(map[string]bool)}
}

// Scan recomputes every non-completed drone's partner set from the given
// post-movement snapshot and returns edge-triggered enter/exit events.
// The partner relation is symmetric within a single pass.
func (c *Detector) Scan(drones []*Drone, simTime float64) []CollisionEvent {
	for _, d := range drones {
		if d.journey == JourneyCompleted {
			continue
		}
		d.partners = make(map[string]struct{})
	}

	for i := 0; i < len(drones); i++ {
		a := drones[i]
		if a.journey == JourneyCompleted {
			continue
		}
		for j := i + 1; j < len(drones); j++ {
			b := drones[j]
			if b.journey == JourneyCompleted {
				continue
			}
			if a.position.DistanceTo(b.position) < a.collisionRadius+b.collisionRadius {
				a.partners[b.id] = struct{}{}
				b.partners[a.id] = struct{}{}
			}
		}
	}

	var events []CollisionEvent
	seen := make(map[string]bool, len(drones))
	for _, d := range drones {
		if d.journey == JourneyCompleted {
			continue
		}
		d.colliding = len(d.partners) > 0
		seen[d.id] = true
		if d.colliding == c.prev[d.id] {
			continue
		}
		typ := CollisionEnter
		if !d.colliding {
			typ = CollisionExit
		}
		partners := d.CollisionPartners()
		sort.Strings(partners)
		events = append(events, CollisionEvent{
			Type:     typ,
			SimTime:  simTime,
			DroneID:  d.id,
			Partners: partners,
		})
		c.prev[d.id] = d.colliding
	}

	// Drop history for drones that no longer exist.
	for id := range c.prev {
		if !seen[id] {
			delete(c.prev, id)
		}
	}
	return events
}
