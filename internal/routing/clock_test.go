package routing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"00:00:00", 0},
		{"08:05:00", 8*3600 + 5*60},
		{"8:05:30", 8*3600 + 5*60 + 30},
		{"23:59:59", 86399},
		{"25:10:00", 25*3600 + 10*60},
		{" 07:00:00 ", 7 * 3600},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseClock_Invalid(t *testing.T) {
	for _, in := range []string{"", "08:00", "08:60:00", "08:00:61", "aa:00:00", "-1:00:00", "08:5:00"} {
		_, err := ParseClock(in)
		assert.Error(t, err, in)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "08:05:00", FormatClock(8*time.Hour+5*time.Minute))
	assert.Equal(t, "25:00:01", FormatClock(25*time.Hour+time.Second))
	assert.Equal(t, "00:00:00", FormatClock(-time.Minute))
}

func TestSegmentDuration(t *testing.T) {
	tests := []struct {
		name      string
		departure int
		arrival   int
		want      int
		ok        bool
	}{
		{"same day", 8 * 3600, 8*3600 + 300, 300, true},
		{"written modulo 24h", 23*3600 + 58*60, 3 * 60, 300, true},
		{"extended clock", 23*3600 + 58*60, 24*3600 + 3*60, 300, true},
		{"arrival before departure", 10*3600 + 5*60, 10 * 3600, 0, false},
		{"morning arrival after morning departure", 11 * 3600, 1 * 3600, 0, false},
		{"wrap still negative", 40 * 3600, 1 * 3600, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := segmentDuration(tt.departure, tt.arrival)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
