package repository

import (
	"context"
	"fmt"
	"os"

	"github.com/jamespfennell/gtfs"
	"github.com/smarttransit/saferoute-backend/internal/models"
	"github.com/smarttransit/saferoute-backend/internal/routing"
)

// GTFSSource builds the network relations from a GTFS static zip plus a
// separate per-stop risk CSV
type GTFSSource struct {
	zipPath  string
	riskPath string
}

// NewGTFSSource creates a GTFS source. riskPath may be empty, in which case every
// stop has risk 0.
func NewGTFSSource(zipPath, riskPath string) *GTFSSource {
	return &GTFSSource{zipPath: zipPath, riskPath: riskPath}
}

// Name identifies this source in logs
func (s *GTFSSource) Name() string {
	return "gtfs:" + s.zipPath
}

// FetchNetwork parses the feed and flattens it into NetworkData
func (s *GTFSSource) FetchNetwork(ctx context.Context) (*models.NetworkData, error) {
	b, err := os.ReadFile(s.zipPath)
	if err != nil {
		return nil, &models.UpstreamError{Source: s.Name(), Err: err}
	}

	static, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, &routing.DataIntegrityError{Relation: "gtfs", Key: s.zipPath, Reason: err.Error()}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := flattenStatic(static)
	if err != nil {
		return nil, err
	}

	if s.riskPath != "" {
		if data.Risks, err = readRiskCSV(s.riskPath); err != nil {
			return nil, err
		}
	}

	return data, nil
}

// flattenStatic converts the parsed feed into NetworkData. The parser reports a
// stop time with only one of arrival or departure as 00:00:00 for both, so a
// zero row after a timed row in the same trip is rejected. Stop times arrive
// sorted by stop_sequence.
func flattenStatic(static *gtfs.Static) (*models.NetworkData, error) {
	data := &models.NetworkData{
		Stops: make([]models.StopRecord, 0, len(static.Stops)),
	}

	// stations and entrances without coordinates never appear in stop times
	for _, stop := range static.Stops {
		if stop.Latitude == nil || stop.Longitude == nil {
			continue
		}
		data.Stops = append(data.Stops, models.StopRecord{
			StopID:   stop.Id,
			StopName: stop.Name,
			Lat:      *stop.Latitude,
			Lon:      *stop.Longitude,
		})
	}

	for _, trip := range static.Trips {
		routeID := ""
		if trip.Route != nil {
			routeID = trip.Route.Id
		}
		data.TripRoutes = append(data.TripRoutes, models.TripRouteRecord{TripID: trip.ID, RouteID: routeID})

		timed := false
		for _, st := range trip.StopTimes {
			if st.Stop == nil {
				continue
			}
			if st.ArrivalTime == 0 && st.DepartureTime == 0 {
				if timed {
					return nil, &routing.DataIntegrityError{
						Relation: "gtfs",
						Key:      fmt.Sprintf("%s#%d", trip.ID, st.StopSequence),
						Reason:   "missing arrival or departure time",
					}
				}
			} else {
				timed = true
			}
			data.StopTimes = append(data.StopTimes, models.StopTimeRecord{
				TripID:        trip.ID,
				StopID:        st.Stop.Id,
				StopSequence:  st.StopSequence,
				ArrivalTime:   routing.FormatClock(st.ArrivalTime),
				DepartureTime: routing.FormatClock(st.DepartureTime),
			})
		}
	}

	return data, nil
}
