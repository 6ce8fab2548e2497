// Package admin exposes the scheduler's command surface over HTTP. The
// endpoints map the original start/pause/speed/headless controls onto JSON
// calls; they never touch simulation state directly.
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"dronefleet-sim/internal/sim"
)

type Server struct {
	sched *sim.Scheduler
	mux   *http.ServeMux
}

func NewServer(sched *sim.Scheduler) *Server {
	s := &Server{sched: sched, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/status", s.handleStatus)
	s.mux.HandleFunc("/drones", s.handleDrones)
	s.mux.HandleFunc("/plans", s.handlePlans)
	s.mux.HandleFunc("/pause", s.handlePause)
	s.mux.HandleFunc("/resume", s.handleResume)
	s.mux.HandleFunc("/speed", s.handleSpeed)
	s.mux.HandleFunc("/headless", s.handleHeadless)
}

// Start serves until the context is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux}
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()
	return srv.ListenAndServe()
}

// Handler returns the route mux, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.sched.Stats())
}

func (s *Server) handleDrones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.sched.Snapshot())
}

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.sched.Plans())
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.sched.Pause()
	writeJSON(w, map[string]any{"running": s.sched.Running()})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.sched.Resume()
	writeJSON(w, map[string]any{"running": s.sched.Running()})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	v, err := strconv.ParseFloat(r.URL.Query().Get("value"), 64)
	if err != nil || v <= 0 {
		http.Error(w, "value must be a positive number", http.StatusBadRequest)
		return
	}
	s.sched.SetSpeed(v)
	writeJSON(w, map[string]any{"speed_multiplier": s.sched.Speed()})
}

func (s *Server) handleHeadless(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	v, err := strconv.ParseBool(r.URL.Query().Get("value"))
	if err != nil {
		http.Error(w, "value must be a boolean", http.StatusBadRequest)
		return
	}
	s.sched.SetHeadless(v)
	writeJSON(w, map[string]any{"headless": s.sched.Headless()})
}
