package routing

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/smarttransit/saferoute-backend/internal/models"
)

// DataIntegrityError reports upstream relations that reference each other inconsistently
type DataIntegrityError struct {
	Relation string
	Key      string
	Reason   string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity violation in %s (%s): %s", e.Relation, e.Key, e.Reason)
}

func integrityErr(relation, key, format string, args ...interface{}) error {
	return &DataIntegrityError{Relation: relation, Key: key, Reason: fmt.Sprintf(format, args...)}
}

// pairObservations accumulates every trip observation of one ordered stop pair
type pairObservations struct {
	key         edgeKey
	sumSeconds  float64
	count       int
	routeCounts map[string]int
	routeOrder  []string
}

func (p *pairObservations) add(durationSeconds int, routeID string) {
	p.sumSeconds += float64(durationSeconds)
	p.count++
	if _, seen := p.routeCounts[routeID]; !seen {
		p.routeOrder = append(p.routeOrder, routeID)
	}
	p.routeCounts[routeID]++
}

// modeRoute returns the most frequent route id; ties go to the first one observed
func (p *pairObservations) modeRoute() string {
	best := ""
	bestCount := 0
	for _, routeID := range p.routeOrder {
		if c := p.routeCounts[routeID]; c > bestCount {
			best = routeID
			bestCount = c
		}
	}
	return best
}

// BuildGraph joins the upstream relations into a routable graph.
//
// Stops missing from the risk relation get risk 0. Each trip's stop times are ordered by
// stop sequence and every adjacent pair contributes one observation; observations of the
// same ordered pair are averaged into a single segment whose route id is the most frequent
// contributing route. Trips are processed in ascending trip id so the result is
// deterministic.
func BuildGraph(data *models.NetworkData) (*Graph, error) {
	if data == nil {
		data = &models.NetworkData{}
	}

	risk, err := indexRisk(data.Risks)
	if err != nil {
		return nil, err
	}

	stops := make([]*Stop, 0, len(data.Stops))
	stopByID := make(map[string]*Stop, len(data.Stops))
	for _, rec := range data.Stops {
		if rec.StopID == "" {
			return nil, integrityErr("stops", rec.StopName, "empty stop_id")
		}
		if _, dup := stopByID[rec.StopID]; dup {
			return nil, integrityErr("stops", rec.StopID, "duplicate stop_id")
		}
		s := &Stop{
			ID:        rec.StopID,
			Name:      rec.StopName,
			Lat:       rec.Lat,
			Lon:       rec.Lon,
			RiskScore: risk[rec.StopID],
		}
		stops = append(stops, s)
		stopByID[s.ID] = s
	}

	routeOf, err := indexTripRoutes(data.TripRoutes)
	if err != nil {
		return nil, err
	}

	trips, err := groupStopTimes(data.StopTimes, stopByID, routeOf)
	if err != nil {
		return nil, err
	}

	tripIDs := make([]string, 0, len(trips))
	for id := range trips {
		tripIDs = append(tripIDs, id)
	}
	sort.Strings(tripIDs)

	pairs := make(map[edgeKey]*pairObservations)
	var pairOrder []*pairObservations

	for _, tripID := range tripIDs {
		rows := trips[tripID]
		sort.Slice(rows, func(i, j int) bool { return rows[i].StopSequence < rows[j].StopSequence })

		for i := 0; i+1 < len(rows); i++ {
			from, to := rows[i], rows[i+1]
			if from.StopSequence == to.StopSequence {
				return nil, integrityErr("stop_times", tripID, "duplicate stop_sequence %d", from.StopSequence)
			}

			departure, err := clockOf(from.DepartureTime, from.ArrivalTime)
			if err != nil {
				return nil, integrityErr("stop_times", stopTimeKey(from), "departure: %v", err)
			}
			arrival, err := clockOf(to.ArrivalTime, to.DepartureTime)
			if err != nil {
				return nil, integrityErr("stop_times", stopTimeKey(to), "arrival: %v", err)
			}

			duration, ok := segmentDuration(departure, arrival)
			if !ok {
				return nil, integrityErr("stop_times", stopTimeKey(to), "arrival %s precedes departure %s",
					FormatClock(time.Duration(arrival)*time.Second), FormatClock(time.Duration(departure)*time.Second))
			}

			key := edgeKey{from.StopID, to.StopID}
			obs, ok := pairs[key]
			if !ok {
				obs = &pairObservations{key: key, routeCounts: make(map[string]int)}
				pairs[key] = obs
				pairOrder = append(pairOrder, obs)
			}
			obs.add(duration, routeOf[tripID])
		}
	}

	segments := make([]*Segment, 0, len(pairOrder))
	for _, obs := range pairOrder {
		mean := obs.sumSeconds / float64(obs.count)
		destRisk := stopByID[obs.key.to].RiskScore

		weight, err := RiskWeight(mean, destRisk)
		if err != nil {
			return nil, fmt.Errorf("segment %s->%s: %w", obs.key.from, obs.key.to, err)
		}

		segments = append(segments, &Segment{
			From:            obs.key.from,
			To:              obs.key.to,
			DurationSeconds: mean,
			RouteID:         obs.modeRoute(),
			Weight:          weight,
			DestinationRisk: destRisk,
		})
	}

	return newGraph(stops, segments), nil
}

func indexRisk(records []models.RiskRecord) (map[string]float64, error) {
	risk := make(map[string]float64, len(records))
	for _, rec := range records {
		if rec.RiskScore < 0 {
			return nil, integrityErr("risk", rec.StopID, "negative risk_score %v", rec.RiskScore)
		}
		if _, dup := risk[rec.StopID]; dup {
			return nil, integrityErr("risk", rec.StopID, "duplicate stop_id")
		}
		risk[rec.StopID] = rec.RiskScore
	}
	return risk, nil
}

func indexTripRoutes(records []models.TripRouteRecord) (map[string]string, error) {
	routeOf := make(map[string]string, len(records))
	for _, rec := range records {
		if existing, dup := routeOf[rec.TripID]; dup && existing != rec.RouteID {
			return nil, integrityErr("trips", rec.TripID, "trip mapped to routes %q and %q", existing, rec.RouteID)
		}
		routeOf[rec.TripID] = rec.RouteID
	}
	return routeOf, nil
}

func groupStopTimes(
	records []models.StopTimeRecord,
	stopByID map[string]*Stop,
	routeOf map[string]string,
) (map[string][]models.StopTimeRecord, error) {
	trips := make(map[string][]models.StopTimeRecord)
	for _, rec := range records {
		if _, ok := stopByID[rec.StopID]; !ok {
			return nil, integrityErr("stop_times", stopTimeKey(rec), "references unknown stop %q", rec.StopID)
		}
		if _, ok := routeOf[rec.TripID]; !ok {
			return nil, integrityErr("stop_times", stopTimeKey(rec), "references unknown trip %q", rec.TripID)
		}
		trips[rec.TripID] = append(trips[rec.TripID], rec)
	}
	return trips, nil
}

// clockOf parses primary, falling back to the row's other time when primary is blank
func clockOf(primary, fallback string) (int, error) {
	if primary == "" {
		primary = fallback
	}
	return ParseClock(primary)
}

func stopTimeKey(rec models.StopTimeRecord) string {
	return rec.TripID + "#" + strconv.Itoa(rec.StopSequence)
}
