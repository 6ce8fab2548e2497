package sim

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"dronefleet-sim/internal/telemetry"
)

// greptimeClient is the subset of the ingester client used by the writer.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes telemetry, collision, and state rows to GreptimeDB
// via the ingester client.
type GreptimeDBWriter struct {
	client     greptimeClient
	db         string
	teleTable  string
	collTable  string
	stateTable string
	log        *slog.Logger
}

// NewGreptimeDBWriter creates a writer and auto-creates the tables if
// needed. collTable or stateTable may be empty to skip those sinks.
func NewGreptimeDBWriter(endpoint, database, teleTable, collTable, stateTable string, log *slog.Logger) (*GreptimeDBWriter, error) {
	if log == nil {
		log = slog.Default()
	}
	if teleTable == "" {
		teleTable = telemetry.TelemetryTableName
	}
	client, err := greptime.NewClient(greptime.NewConfig(endpoint).WithDatabase(database))
	if err != nil {
		return nil, err
	}
	return &GreptimeDBWriter{
		client:     client,
		db:         database,
		teleTable:  teleTable,
		collTable:  collTable,
		stateTable: stateTable,
		log:        log,
	}, nil
}

// Write inserts a single telemetry row.
func (w *GreptimeDBWriter) Write(row telemetry.TelemetryRow) error {
	return w.WriteBatch([]telemetry.TelemetryRow{row})
}

// WriteBatch inserts multiple telemetry rows.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.teleTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("sim_id", types.STRING)
	tbl.AddTagColumn("drone_id", types.STRING)
	tbl.AddFieldColumn("model", types.STRING)
	tbl.AddFieldColumn("x", types.FLOAT)
	tbl.AddFieldColumn("y", types.FLOAT)
	tbl.AddFieldColumn("z", types.FLOAT)
	tbl.AddFieldColumn("speed_ms", types.FLOAT)
	tbl.AddFieldColumn("battery_wh", types.FLOAT)
	tbl.AddFieldColumn("battery_pct", types.FLOAT)
	tbl.AddFieldColumn("journey", types.STRING)
	tbl.AddFieldColumn("negotiation", types.STRING)
	tbl.AddFieldColumn("waypoint", types.STRING)
	tbl.AddFieldColumn("distance_m", types.FLOAT)
	tbl.AddFieldColumn("flight_time_s", types.FLOAT)
	tbl.AddFieldColumn("colliding", types.BOOLEAN)
	tbl.AddFieldColumn("sim_time", types.FLOAT)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(r.SimID, r.DroneID, r.Model, r.X, r.Y, r.Z,
			r.SpeedMS, r.BatteryWh, r.BatteryPct, r.Journey, r.Negotiation,
			r.Waypoint, r.DistanceM, r.FlightTimeS, r.Colliding, r.SimTime,
			r.Timestamp); err != nil {
			return err
		}
	}
	return w.submit(tbl, len(rows))
}

// WriteCollision inserts a single collision row, if enabled.
func (w *GreptimeDBWriter) WriteCollision(row telemetry.CollisionRow) error {
	return w.WriteCollisions([]telemetry.CollisionRow{row})
}

// WriteCollisions inserts multiple collision rows.
func (w *GreptimeDBWriter) WriteCollisions(rows []telemetry.CollisionRow) error {
	if w.collTable == "" || len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.collTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("sim_id", types.STRING)
	tbl.AddTagColumn("drone_id", types.STRING)
	tbl.AddFieldColumn("event", types.STRING)
	tbl.AddFieldColumn("partners", types.STRING)
	tbl.AddFieldColumn("sim_time", types.FLOAT)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(r.SimID, r.DroneID, r.Event,
			strings.Join(r.Partners, ","), r.SimTime, r.Timestamp); err != nil {
			return err
		}
	}
	return w.submit(tbl, len(rows))
}

// WriteState inserts a fleet state row, if enabled.
func (w *GreptimeDBWriter) WriteState(row telemetry.FleetStateRow) error {
	if w.stateTable == "" {
		return nil
	}
	tbl, err := table.New(w.stateTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("sim_id", types.STRING)
	tbl.AddFieldColumn("sim_time", types.FLOAT)
	tbl.AddFieldColumn("real_time", types.FLOAT)
	tbl.AddFieldColumn("running", types.BOOLEAN)
	tbl.AddFieldColumn("speed_multiplier", types.FLOAT)
	tbl.AddFieldColumn("active_drones", types.INT)
	tbl.AddFieldColumn("spawned_plans", types.INT)
	tbl.AddFieldColumn("total_plans", types.INT)
	tbl.AddFieldColumn("colliding_drones", types.INT)
	tbl.AddFieldColumn("mean_pairwise_dist_m", types.FLOAT)
	tbl.AddFieldColumn("negotiation", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	if err := tbl.AddRow(row.SimID, row.SimTime, row.RealTime, row.Running,
		row.SpeedMultiplier, int64(row.ActiveDrones), int64(row.SpawnedPlans),
		int64(row.TotalPlans), int64(row.CollidingDrones),
		row.MeanPairwiseDistM, row.Negotiation, row.Timestamp); err != nil {
		return err
	}
	return w.submit(tbl, 1)
}

func (w *GreptimeDBWriter) submit(tbl *table.Table, n int) error {
	resp, err := w.client.Write(context.Background(), tbl)
	if err != nil {
		w.log.Error("greptime write failed", "err", err)
		return err
	}
	affected := int(resp.GetAffectedRows().GetValue())
	if affected != n {
		return fmt.Errorf("greptime write affected %d of %d rows", affected, n)
	}
	w.log.Debug("greptime rows written", "rows", n)
	return nil
}
