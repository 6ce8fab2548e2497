package sim

import (
	"context"
	"time"

	"dronefleet-sim/internal/logging"
)

// Run drives Tick from a wall-clock ticker and stops when the context is
// done. interval is the wall time between ticks; each tick advances logical
// time by fixed_step times the speed multiplier.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	log := logging.FromContext(ctx)
	log.Info("starting scheduler", "tick_interval", interval,
		"fixed_step", s.fixedStep, "plans", len(s.plans))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			s.Tick(now.Sub(last).Seconds())
			last = now
		case <-ctx.Done():
			log.Info("stopping scheduler", "sim_time", s.SimTime())
			return
		}
	}
}
