package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/smarttransit/saferoute-backend/internal/config"
	"github.com/smarttransit/saferoute-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultTables() config.SourceConfig {
	return config.SourceConfig{
		Kind:           config.SourcePostgres,
		StopsTable:     "stg_gtfs_stops",
		RiskTable:      "int_network_risk",
		StopTimesTable: "stg_gtfs_stop_times",
		TripsTable:     "stg_gtfs_trips",
	}
}

func setupNetworkRepositoryTest(t *testing.T) (*NetworkRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo, err := NewNetworkRepository(&PostgresDB{DB: sqlxDB}, defaultTables())
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestNewNetworkRepository_RejectsUnsafeRelationNames(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tables := defaultTables()
	tables.RiskTable = "risk; DROP TABLE stops"

	repo, err := NewNetworkRepository(&PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}, tables)
	assert.Error(t, err)
	assert.Nil(t, repo)

	tables.RiskTable = "analytics.int_network_risk"
	repo, err = NewNetworkRepository(&PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}, tables)
	assert.NoError(t, err)
	assert.NotNil(t, repo)
}

func TestFetchNetwork_Success(t *testing.T) {
	repo, mock, cleanup := setupNetworkRepositoryTest(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM stg_gtfs_stops`).
		WillReturnRows(sqlmock.NewRows([]string{"stop_id", "stop_name", "stop_lat", "stop_lon"}).
			AddRow("S1", "Düsseldorf Hbf", 51.2198, 6.7943).
			AddRow("S2", "Heinrich-Heine-Allee", 51.2255, 6.7776))

	mock.ExpectQuery(`SELECT (.+) FROM int_network_risk`).
		WillReturnRows(sqlmock.NewRows([]string{"stop_id", "risk_score"}).
			AddRow("S1", 3.5))

	mock.ExpectQuery(`SELECT (.+) FROM stg_gtfs_stop_times`).
		WillReturnRows(sqlmock.NewRows([]string{"trip_id", "stop_id", "stop_sequence", "arrival_time", "departure_time"}).
			AddRow("T1", "S1", 1, "08:00:00", "08:00:00").
			AddRow("T1", "S2", 2, "08:05:00", "08:05:00"))

	mock.ExpectQuery(`SELECT (.+) FROM stg_gtfs_trips`).
		WillReturnRows(sqlmock.NewRows([]string{"trip_id", "route_id"}).
			AddRow("T1", "R1"))

	data, err := repo.FetchNetwork(context.Background())
	require.NoError(t, err)

	require.Len(t, data.Stops, 2)
	assert.Equal(t, models.StopRecord{StopID: "S1", StopName: "Düsseldorf Hbf", Lat: 51.2198, Lon: 6.7943}, data.Stops[0])
	assert.Equal(t, []models.RiskRecord{{StopID: "S1", RiskScore: 3.5}}, data.Risks)
	require.Len(t, data.StopTimes, 2)
	assert.Equal(t, 2, data.StopTimes[1].StopSequence)
	assert.Equal(t, "08:05:00", data.StopTimes[1].ArrivalTime)
	assert.Equal(t, []models.TripRouteRecord{{TripID: "T1", RouteID: "R1"}}, data.TripRoutes)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchNetwork_UpstreamFailure(t *testing.T) {
	repo, mock, cleanup := setupNetworkRepositoryTest(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM stg_gtfs_stops`).
		WillReturnRows(sqlmock.NewRows([]string{"stop_id", "stop_name", "stop_lat", "stop_lon"}).
			AddRow("S1", "Düsseldorf Hbf", 51.2198, 6.7943))

	mock.ExpectQuery(`SELECT (.+) FROM int_network_risk`).
		WillReturnError(fmt.Errorf("relation \"int_network_risk\" does not exist"))

	data, err := repo.FetchNetwork(context.Background())
	require.Error(t, err)
	assert.Nil(t, data)
	assert.True(t, errors.Is(err, models.ErrUpstreamUnavailable))
	assert.Contains(t, err.Error(), "postgres:int_network_risk")

	var upstream *models.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "postgres:int_network_risk", upstream.Source)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRiskScores_Empty(t *testing.T) {
	repo, mock, cleanup := setupNetworkRepositoryTest(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM int_network_risk WHERE risk_score IS NOT NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"stop_id", "risk_score"}))

	risks, err := repo.GetRiskScores(context.Background())
	require.NoError(t, err)
	assert.Empty(t, risks)

	assert.NoError(t, mock.ExpectationsWereMet())
}
