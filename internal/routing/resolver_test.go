package routing

import (
	"testing"

	"github.com/smarttransit/saferoute-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestStop(t *testing.T) {
	g, err := BuildGraph(duesseldorfNetwork())
	require.NoError(t, err)

	tests := []struct {
		name     string
		lat, lon float64
		want     string
	}{
		{"exact S1", 51.2198, 6.7943, "S1"},
		{"near S2", 51.2250, 6.7780, "S2"},
		{"near S3", 51.2060, 6.7720, "S3"},
		{"south of S4", 51.1800, 6.8100, "S4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := g.NearestStop(tt.lat, tt.lon)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.ID)
		})
	}
}

func TestNearestStop_SingleStopAlwaysWins(t *testing.T) {
	g, err := BuildGraph(&models.NetworkData{
		Stops: []models.StopRecord{{StopID: "ONLY", StopName: "Only", Lat: 51.2, Lon: 6.8}},
	})
	require.NoError(t, err)

	for _, p := range [][2]float64{{0, 0}, {-89, 179}, {51.2, 6.8}, {89.9, -179.9}} {
		s, err := g.NearestStop(p[0], p[1])
		require.NoError(t, err)
		assert.Equal(t, "ONLY", s.ID)
	}
}

func TestNearestStop_EmptyGraph(t *testing.T) {
	g, err := BuildGraph(&models.NetworkData{})
	require.NoError(t, err)

	s, err := g.NearestStop(51.2, 6.8)
	assert.ErrorIs(t, err, ErrNoStops)
	assert.Nil(t, s)
}

func TestNearestStop_TieBreaksByStopID(t *testing.T) {
	// Z and A are equidistant from the origin; input order must not matter
	for _, order := range [][]string{{"Z", "A"}, {"A", "Z"}} {
		data := &models.NetworkData{}
		for _, id := range order {
			lon := 1.0
			if id == "Z" {
				lon = -1.0
			}
			data.Stops = append(data.Stops, models.StopRecord{StopID: id, Lat: 0, Lon: lon})
		}
		g, err := BuildGraph(data)
		require.NoError(t, err)

		s, err := g.NearestStop(0, 0)
		require.NoError(t, err)
		assert.Equal(t, "A", s.ID)
	}
}
