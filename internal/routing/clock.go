package routing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	secondsPerDay = 24 * 60 * 60
	halfDay       = secondsPerDay / 2
)

// ParseClock converts a service-day clock time (H:MM:SS or HH:MM:SS) into seconds
// after midnight. Hours may exceed 23 for trips that run past midnight.
func ParseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock time %q: expected HH:MM:SS", value)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("invalid hours in clock time %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid minutes in clock time %q", value)
	}
	seconds, err := strconv.Atoi(parts[2])
	if err != nil || seconds < 0 || seconds > 59 || len(parts[2]) != 2 {
		return 0, fmt.Errorf("invalid seconds in clock time %q", value)
	}

	return hours*3600 + minutes*60 + seconds, nil
}

// FormatClock renders an offset from service-day midnight as HH:MM:SS
func FormatClock(d time.Duration) string {
	total := int(d / time.Second)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// segmentDuration returns the travel time between a departure and the next arrival.
// A pair written modulo 24h across midnight (evening departure, morning arrival) gets
// one day added; any other arrival before its departure is reported as not ok.
func segmentDuration(departure, arrival int) (int, bool) {
	d := arrival - departure
	if d >= 0 {
		return d, true
	}
	if departure%secondsPerDay >= halfDay && arrival < halfDay && d+secondsPerDay >= 0 {
		return d + secondsPerDay, true
	}
	return d, false
}
