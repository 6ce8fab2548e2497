package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dronefleet-sim/internal/admin"
	"dronefleet-sim/internal/config"
	"dronefleet-sim/internal/fleet"
	"dronefleet-sim/internal/flightplan"
	"dronefleet-sim/internal/logging"
	"dronefleet-sim/internal/negotiation"
	"dronefleet-sim/internal/sim"
	"dronefleet-sim/internal/world"
)

var (
	simPrintOnly  bool
	simHeadless   bool
	simConfigPath string
	simSchemaPath string
	simPlansPath  string
	simTick       time.Duration
	simLogFile    string
	simAdminAddr  string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the drone fleet simulator",
	Long:  "simulate spawns drones from a flight-plan table on a logical clock, negotiates routes, and emits telemetry.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.New(slog.LevelInfo)
		ctx := logging.NewContext(cmd.Context(), logger)
		ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		cfg, err := config.Load(simConfigPath, simSchemaPath)
		if err != nil {
			return err
		}

		plansPath := simPlansPath
		if plansPath == "" {
			plansPath = cfg.FlightPlans
		}
		plans, err := flightplan.Load(plansPath, logger)
		if err != nil {
			return err
		}
		logger.Info("flight plans loaded", "path", plansPath, "count", len(plans))

		var negotiator fleet.RouteNegotiator
		connState := sim.ConnStateFunc(nil)
		if !cfg.Negotiation.DisableNegotiation && cfg.Negotiation.Endpoint != "" {
			reconnect := time.Duration(cfg.Negotiation.ReconnectIntervalS * float64(time.Second))
			client := negotiation.NewClient(cfg.Negotiation.Endpoint, reconnect, logger)
			client.Connect()
			defer client.Close()
			negotiator = client
			connState = func() string { return client.State().String() }
		} else {
			logger.Info("route negotiation disabled, synthesizing all routes locally")
		}

		profiles := fleet.NewProfileTable(cfg.Profiles)
		registry := fleet.NewRegistry(logger, profiles, negotiator,
			cfg.Negotiation.RequestTimeoutS, cfg.Simulation.CollisionRadiusM)
		geo := world.NewGeoConverter(cfg.Geo.OriginLat, cfg.Geo.OriginLon)

		if simHeadless {
			cfg.Simulation.Headless = true
		}
		var tui *sim.TUIWriter
		if !cfg.Simulation.Headless {
			tui = sim.NewTUIWriter()
		}

		tw, cw, sw, cleanup, err := newWriters(simPrintOnly, simLogFile, tui, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		simID := os.Getenv("SIM_ID")
		if simID == "" {
			simID = "mission-01"
		}

		tickInterval := simTick
		if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
			d, err := time.ParseDuration(envTick)
			if err != nil {
				return err
			}
			tickInterval = d
		}

		scheduler := sim.NewScheduler(simID, cfg, registry, plans, geo, tw, cw, sw, connState)
		if tui != nil {
			tui.SuppressWhen(scheduler.Headless)
		}

		srv := admin.NewServer(scheduler)
		go func() {
			logger.Info("admin server listening", "addr", simAdminAddr)
			if err := srv.Start(ctx, simAdminAddr); err != nil && err != http.ErrServerClosed {
				logger.Error("admin server failed", "error", err)
			}
		}()

		go scheduler.Run(ctx, tickInterval)

		<-ctx.Done()
		if tui != nil {
			tui.Close()
		}
		logger.Info("simulation stopped")
		return nil
	},
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print telemetry to STDOUT instead of writing to DB")
	simulateCmd.Flags().BoolVar(&simHeadless, "headless", false, "Disable the terminal dashboard")
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	simulateCmd.Flags().StringVar(&simPlansPath, "plans", "", "Path to flight-plan CSV (overrides config)")
	simulateCmd.Flags().DurationVar(&simTick, "tick", 100*time.Millisecond, "Wall-clock tick interval (e.g. 100ms, 1s)")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export telemetry/collision/state logs (JSONL)")
	simulateCmd.Flags().StringVar(&simAdminAddr, "admin-addr", ":8080", "Admin API listen address")
}
