// Package flightplan loads the scheduled flight-plan table consumed by the
// scheduler. The table is loaded once at startup and only the spawned flag
// is ever mutated afterwards.
package flightplan

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Plan is one scheduled point-to-point mission.
type Plan struct {
	ID            string
	DeparturePort string
	DepartureTime float64 // simulation seconds
	OriginLat     float64
	OriginLon     float64
	DestLat       float64
	DestLon       float64
	Model         string
	Spawned       bool // set exactly once by the scheduler
}

// Columns: plan_id, departure_port, unused, departure_time_s,
// origin_lat, origin_lon, dest_lat, dest_lon, model.
const planFields = 9

// Load reads the flight-plan CSV at path. Malformed rows are skipped with a
// warning rather than failing the whole table.
func Load(path string, log *slog.Logger) ([]*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open flight plans: %w", err)
	}
	defer f.Close()
	return Parse(f, log)
}

// Parse reads flight plans from r.
func Parse(r io.Reader, log *slog.Logger) ([]*Plan, error) {
	if log == nil {
		log = slog.Default()
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var plans []*Plan
	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read flight plans: %w", err)
		}
		line++
		plan, err := parseRecord(record)
		if err != nil {
			if line == 1 {
				// Tolerate a header row.
				continue
			}
			log.Warn("skipping malformed flight plan row", "line", line, "err", err)
			continue
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func parseRecord(record []string) (*Plan, error) {
	if len(record) != planFields {
		return nil, fmt.Errorf("expected %d fields, got %d", planFields, len(record))
	}
	id := strings.TrimSpace(record[0])
	if id == "" {
		return nil, fmt.Errorf("empty plan id")
	}
	nums := make([]float64, 0, 5)
	for _, idx := range []int{3, 4, 5, 6, 7} {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", idx, err)
		}
		nums = append(nums, v)
	}
	return &Plan{
		ID:            id,
		DeparturePort: strings.TrimSpace(record[1]),
		DepartureTime: nums[0],
		OriginLat:     nums[1],
		OriginLon:     nums[2],
		DestLat:       nums[3],
		DestLon:       nums[4],
		Model:         strings.TrimSpace(record[8]),
	}, nil
}
