// ColorStdoutWriter prints human-friendly, colorized telemetry to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"dronefleet-sim/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorGray    = "\x1b[90m"
)

// ColorStdoutWriter prints telemetry rows using ANSI colors.
type ColorStdoutWriter struct {
	out io.Writer
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter() *ColorStdoutWriter {
	return &ColorStdoutWriter{out: os.Stdout}
}

func batteryColor(pct float64) string {
	switch {
	case pct <= 10:
		return colorRed
	case pct <= 30:
		return colorYellow
	default:
		return colorGreen
	}
}

func journeyColor(journey string) string {
	switch journey {
	case "outbound":
		return colorBlue
	case "returning":
		return colorMagenta
	default:
		return colorGray
	}
}

// Write prints one aligned, colorized telemetry line.
func (w *ColorStdoutWriter) Write(row telemetry.TelemetryRow) error {
	tw := tabwriter.NewWriter(w.out, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "t=%7.1fs\t%s\t%s%s%s\t%s%5.1f%%%s\t(%.0f, %.0f, %.0f)\t%.1f m/s\t%s\n",
		row.SimTime,
		row.DroneID,
		journeyColor(row.Journey), row.Journey, colorReset,
		batteryColor(row.BatteryPct), row.BatteryPct, colorReset,
		row.X, row.Y, row.Z,
		row.SpeedMS,
		row.Waypoint,
	)
	return tw.Flush()
}

// WriteBatch prints multiple telemetry rows.
func (w *ColorStdoutWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteCollision prints a highlighted collision transition.
func (w *ColorStdoutWriter) WriteCollision(row telemetry.CollisionRow) error {
	color := colorRed
	if row.Event == "exit" {
		color = colorGreen
	}
	_, err := fmt.Fprintf(w.out, "%st=%7.1fs  collision %-5s %s partners=%v%s\n",
		color, row.SimTime, row.Event, row.DroneID, row.Partners, colorReset)
	return err
}

// WriteState prints a dim one-line fleet summary.
func (w *ColorStdoutWriter) WriteState(row telemetry.FleetStateRow) error {
	_, err := fmt.Fprintf(w.out, "%st=%7.1fs  fleet active=%d spawned=%d/%d colliding=%d mean_dist=%.0fm negotiation=%s%s\n",
		colorGray, row.SimTime, row.ActiveDrones, row.SpawnedPlans, row.TotalPlans,
		row.CollidingDrones, row.MeanPairwiseDistM, row.Negotiation, colorReset)
	return err
}
