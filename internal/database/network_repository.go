package database

import (
	"context"
	"fmt"
	"regexp"

	"github.com/smarttransit/saferoute-backend/internal/config"
	"github.com/smarttransit/saferoute-backend/internal/models"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// NetworkRepository reads the stop, risk, stop-time and trip relations
// maintained by the analytical store
type NetworkRepository struct {
	db     DB
	tables config.SourceConfig
}

// NewNetworkRepository creates a new network repository. Relation names come from
// configuration and are interpolated into queries, so they must be plain identifiers.
func NewNetworkRepository(db DB, tables config.SourceConfig) (*NetworkRepository, error) {
	for _, name := range []string{tables.StopsTable, tables.RiskTable, tables.StopTimesTable, tables.TripsTable} {
		if !identifierPattern.MatchString(name) {
			return nil, fmt.Errorf("invalid relation name %q", name)
		}
	}
	return &NetworkRepository{db: db, tables: tables}, nil
}

// Name identifies this source in logs
func (r *NetworkRepository) Name() string {
	return "postgres"
}

// FetchNetwork loads all four relations
func (r *NetworkRepository) FetchNetwork(ctx context.Context) (*models.NetworkData, error) {
	data := &models.NetworkData{}
	var err error

	if data.Stops, err = r.GetStops(ctx); err != nil {
		return nil, err
	}
	if data.Risks, err = r.GetRiskScores(ctx); err != nil {
		return nil, err
	}
	if data.StopTimes, err = r.GetStopTimes(ctx); err != nil {
		return nil, err
	}
	if data.TripRoutes, err = r.GetTripRoutes(ctx); err != nil {
		return nil, err
	}

	return data, nil
}

// GetStops returns every stop with its coordinates
func (r *NetworkRepository) GetStops(ctx context.Context) ([]models.StopRecord, error) {
	query := fmt.Sprintf(`
		SELECT
			CAST(stop_id AS TEXT) AS stop_id,
			COALESCE(stop_name, '') AS stop_name,
			stop_lat,
			stop_lon
		FROM %s
		ORDER BY stop_id
	`, r.tables.StopsTable)

	var stops []models.StopRecord
	if err := r.db.SelectContext(ctx, &stops, query); err != nil {
		return nil, r.upstreamErr(r.tables.StopsTable, err)
	}
	return stops, nil
}

// GetRiskScores returns the per-stop risk scores; stops may be missing
func (r *NetworkRepository) GetRiskScores(ctx context.Context) ([]models.RiskRecord, error) {
	query := fmt.Sprintf(`
		SELECT
			CAST(stop_id AS TEXT) AS stop_id,
			risk_score
		FROM %s
		WHERE risk_score IS NOT NULL
	`, r.tables.RiskTable)

	var risks []models.RiskRecord
	if err := r.db.SelectContext(ctx, &risks, query); err != nil {
		return nil, r.upstreamErr(r.tables.RiskTable, err)
	}
	return risks, nil
}

// GetStopTimes returns every stop-time row ordered by trip and sequence
func (r *NetworkRepository) GetStopTimes(ctx context.Context) ([]models.StopTimeRecord, error) {
	query := fmt.Sprintf(`
		SELECT
			CAST(trip_id AS TEXT) AS trip_id,
			CAST(stop_id AS TEXT) AS stop_id,
			stop_sequence,
			COALESCE(CAST(arrival_time AS TEXT), '') AS arrival_time,
			COALESCE(CAST(departure_time AS TEXT), '') AS departure_time
		FROM %s
		ORDER BY trip_id, stop_sequence
	`, r.tables.StopTimesTable)

	var stopTimes []models.StopTimeRecord
	if err := r.db.SelectContext(ctx, &stopTimes, query); err != nil {
		return nil, r.upstreamErr(r.tables.StopTimesTable, err)
	}
	return stopTimes, nil
}

// GetTripRoutes returns the trip to route mapping
func (r *NetworkRepository) GetTripRoutes(ctx context.Context) ([]models.TripRouteRecord, error) {
	query := fmt.Sprintf(`
		SELECT
			CAST(trip_id AS TEXT) AS trip_id,
			CAST(route_id AS TEXT) AS route_id
		FROM %s
	`, r.tables.TripsTable)

	var trips []models.TripRouteRecord
	if err := r.db.SelectContext(ctx, &trips, query); err != nil {
		return nil, r.upstreamErr(r.tables.TripsTable, err)
	}
	return trips, nil
}

func (r *NetworkRepository) upstreamErr(table string, err error) error {
	return &models.UpstreamError{Source: "postgres:" + table, Err: err}
}
