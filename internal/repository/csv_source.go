package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/smarttransit/saferoute-backend/internal/models"
	"github.com/smarttransit/saferoute-backend/internal/routing"
)

// File names expected inside a CSV network directory
const (
	StopsFile     = "stops.csv"
	RiskFile      = "risk.csv"
	StopTimesFile = "stop_times.csv"
	TripsFile     = "trips.csv"
)

// CSVSource reads the network relations from flat files deposited by the
// data-refresh pipeline. risk.csv is optional.
type CSVSource struct {
	dir string
}

// NewCSVSource creates a source reading from dir
func NewCSVSource(dir string) *CSVSource {
	return &CSVSource{dir: dir}
}

// Name identifies this source in logs
func (s *CSVSource) Name() string {
	return "csv:" + s.dir
}

// FetchNetwork reads all four files
func (s *CSVSource) FetchNetwork(ctx context.Context) (*models.NetworkData, error) {
	data := &models.NetworkData{}
	var err error

	if data.Stops, err = readStopsCSV(filepath.Join(s.dir, StopsFile)); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	riskPath := filepath.Join(s.dir, RiskFile)
	if _, statErr := os.Stat(riskPath); statErr == nil {
		if data.Risks, err = readRiskCSV(riskPath); err != nil {
			return nil, err
		}
	}

	if data.StopTimes, err = readStopTimesCSV(filepath.Join(s.dir, StopTimesFile)); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if data.TripRoutes, err = readTripsCSV(filepath.Join(s.dir, TripsFile)); err != nil {
		return nil, err
	}

	return data, nil
}

// csvTable iterates a header-addressed CSV file
type csvTable struct {
	name   string
	reader *csv.Reader
	index  map[string]int
	line   int
	row    []string
}

func openCSV(path string, required ...string) (*csvTable, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &models.UpstreamError{Source: "csv:" + path, Err: err}
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		f.Close()
		if errors.Is(err, io.EOF) {
			return nil, nil, &routing.DataIntegrityError{Relation: filepath.Base(path), Key: "header", Reason: "empty file"}
		}
		return nil, nil, &models.UpstreamError{Source: "csv:" + path, Err: err}
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		index[h] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			f.Close()
			return nil, nil, &routing.DataIntegrityError{
				Relation: filepath.Base(path),
				Key:      "header",
				Reason:   fmt.Sprintf("missing column %q", col),
			}
		}
	}

	return &csvTable{name: filepath.Base(path), reader: r, index: index, line: 1}, f.Close, nil
}

// next advances to the next row; it returns false at end of file
func (t *csvTable) next() (bool, error) {
	row, err := t.reader.Read()
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	t.line++
	if err != nil {
		return false, t.fail("%v", err)
	}
	t.row = row
	return true, nil
}

func (t *csvTable) get(col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(t.row) {
		return ""
	}
	return strings.TrimSpace(t.row[i])
}

func (t *csvTable) floatCol(col string) (float64, error) {
	v, err := strconv.ParseFloat(t.get(col), 64)
	if err != nil {
		return 0, t.fail("column %s: %v", col, err)
	}
	return v, nil
}

func (t *csvTable) intCol(col string) (int, error) {
	v, err := strconv.Atoi(t.get(col))
	if err != nil {
		return 0, t.fail("column %s: %v", col, err)
	}
	return v, nil
}

func (t *csvTable) fail(format string, args ...interface{}) error {
	return &routing.DataIntegrityError{
		Relation: t.name,
		Key:      "line " + strconv.Itoa(t.line),
		Reason:   fmt.Sprintf(format, args...),
	}
}

func readStopsCSV(path string) ([]models.StopRecord, error) {
	t, closeFn, err := openCSV(path, "stop_id", "stop_name", "stop_lat", "stop_lon")
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var stops []models.StopRecord
	for {
		ok, err := t.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return stops, nil
		}

		lat, err := t.floatCol("stop_lat")
		if err != nil {
			return nil, err
		}
		lon, err := t.floatCol("stop_lon")
		if err != nil {
			return nil, err
		}
		stops = append(stops, models.StopRecord{
			StopID:   t.get("stop_id"),
			StopName: t.get("stop_name"),
			Lat:      lat,
			Lon:      lon,
		})
	}
}

func readRiskCSV(path string) ([]models.RiskRecord, error) {
	t, closeFn, err := openCSV(path, "stop_id", "risk_score")
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var risks []models.RiskRecord
	for {
		ok, err := t.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return risks, nil
		}

		// a blank score is a missing row, same as the left join
		if t.get("risk_score") == "" {
			continue
		}
		score, err := t.floatCol("risk_score")
		if err != nil {
			return nil, err
		}
		risks = append(risks, models.RiskRecord{StopID: t.get("stop_id"), RiskScore: score})
	}
}

func readStopTimesCSV(path string) ([]models.StopTimeRecord, error) {
	t, closeFn, err := openCSV(path, "trip_id", "stop_id", "stop_sequence", "arrival_time", "departure_time")
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var stopTimes []models.StopTimeRecord
	for {
		ok, err := t.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return stopTimes, nil
		}

		seq, err := t.intCol("stop_sequence")
		if err != nil {
			return nil, err
		}
		stopTimes = append(stopTimes, models.StopTimeRecord{
			TripID:        t.get("trip_id"),
			StopID:        t.get("stop_id"),
			StopSequence:  seq,
			ArrivalTime:   t.get("arrival_time"),
			DepartureTime: t.get("departure_time"),
		})
	}
}

func readTripsCSV(path string) ([]models.TripRouteRecord, error) {
	t, closeFn, err := openCSV(path, "trip_id", "route_id")
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var trips []models.TripRouteRecord
	for {
		ok, err := t.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return trips, nil
		}
		trips = append(trips, models.TripRouteRecord{TripID: t.get("trip_id"), RouteID: t.get("route_id")})
	}
}
