package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smarttransit/saferoute-backend/internal/models"
	"github.com/smarttransit/saferoute-backend/internal/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	stopsCSV = "\ufeffstop_id,stop_name,stop_lat,stop_lon,location_type\n" +
		"S1,Düsseldorf Hbf,51.2198,6.7943,0\n" +
		"S2,Heinrich-Heine-Allee,51.2255,6.7776,0\n" +
		"S3,Bilk S,51.2064,6.7725,0\n" +
		"S4,Uni Ost/Botanischer Garten,51.1895,6.8021,0\n"
	riskCSV = "stop_id,risk_score\n" +
		"S3,5\n" +
		"S4,\n"
	stopTimesCSV = "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
		"T1,08:00:00,08:00:00,S1,1\n" +
		"T1,08:05:00,08:05:00,S2,2\n" +
		"T1,08:12:00,08:12:00,S3,3\n" +
		"T2,08:15:00,08:15:00,S3,1\n" +
		"T2,08:25:00,08:25:00,S4,2\n"
	tripsCSV = "route_id,service_id,trip_id\n" +
		"R1,daily,T1\n" +
		"R2,daily,T2\n"
)

func writeNetworkDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestCSVSource_FetchNetwork(t *testing.T) {
	dir := writeNetworkDir(t, map[string]string{
		StopsFile:     stopsCSV,
		RiskFile:      riskCSV,
		StopTimesFile: stopTimesCSV,
		TripsFile:     tripsCSV,
	})

	data, err := NewCSVSource(dir).FetchNetwork(context.Background())
	require.NoError(t, err)

	require.Len(t, data.Stops, 4)
	assert.Equal(t, models.StopRecord{StopID: "S1", StopName: "Düsseldorf Hbf", Lat: 51.2198, Lon: 6.7943}, data.Stops[0])
	assert.Equal(t, []models.RiskRecord{{StopID: "S3", RiskScore: 5}}, data.Risks)
	require.Len(t, data.StopTimes, 5)
	assert.Equal(t, models.StopTimeRecord{
		TripID: "T2", StopID: "S4", StopSequence: 2, ArrivalTime: "08:25:00", DepartureTime: "08:25:00",
	}, data.StopTimes[4])
	assert.Equal(t, []models.TripRouteRecord{{TripID: "T1", RouteID: "R1"}, {TripID: "T2", RouteID: "R2"}}, data.TripRoutes)

	g, err := routing.BuildGraph(data)
	require.NoError(t, err)
	assert.Equal(t, 4, g.NodeCount())
	assert.Equal(t, 3, g.EdgeCount())
}

func TestCSVSource_RiskFileOptional(t *testing.T) {
	dir := writeNetworkDir(t, map[string]string{
		StopsFile:     stopsCSV,
		StopTimesFile: stopTimesCSV,
		TripsFile:     tripsCSV,
	})

	data, err := NewCSVSource(dir).FetchNetwork(context.Background())
	require.NoError(t, err)
	assert.Empty(t, data.Risks)
}

func TestCSVSource_MissingFileIsUpstreamError(t *testing.T) {
	dir := writeNetworkDir(t, map[string]string{
		StopsFile: stopsCSV,
		TripsFile: tripsCSV,
	})

	data, err := NewCSVSource(dir).FetchNetwork(context.Background())
	require.Error(t, err)
	assert.Nil(t, data)
	assert.True(t, errors.Is(err, models.ErrUpstreamUnavailable))
}

func TestCSVSource_MalformedRows(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		relation string
	}{
		{
			name: "missing column",
			files: map[string]string{
				StopsFile: "stop_id,stop_name,stop_lat\nS1,Hbf,51.2\n",
			},
			relation: StopsFile,
		},
		{
			name: "bad latitude",
			files: map[string]string{
				StopsFile: "stop_id,stop_name,stop_lat,stop_lon\nS1,Hbf,north,6.79\n",
			},
			relation: StopsFile,
		},
		{
			name: "bad sequence",
			files: map[string]string{
				StopsFile:     stopsCSV,
				StopTimesFile: "trip_id,stop_id,stop_sequence,arrival_time,departure_time\nT1,S1,first,08:00:00,08:00:00\n",
			},
			relation: StopTimesFile,
		},
		{
			name: "empty stops file",
			files: map[string]string{
				StopsFile: "",
			},
			relation: StopsFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeNetworkDir(t, tt.files)

			_, err := NewCSVSource(dir).FetchNetwork(context.Background())
			require.Error(t, err)

			var integrity *routing.DataIntegrityError
			require.True(t, errors.As(err, &integrity), "got %v", err)
			assert.Equal(t, tt.relation, integrity.Relation)
		})
	}
}

func TestCSVSource_CancelledContext(t *testing.T) {
	dir := writeNetworkDir(t, map[string]string{
		StopsFile:     stopsCSV,
		StopTimesFile: stopTimesCSV,
		TripsFile:     tripsCSV,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCSVSource(dir).FetchNetwork(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
