package models

import (
	"fmt"
	"time"
)

// GeoPoint is a WGS84 coordinate supplied by a client
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RouteRequest represents a passenger's routing query
type RouteRequest struct {
	Start       *GeoPoint `json:"start" binding:"required"`
	Destination *GeoPoint `json:"destination" binding:"required"`
}

// Validate validates the route request
func (r *RouteRequest) Validate() error {
	if r.Start == nil || r.Destination == nil {
		return ErrInvalidInput("start and destination are required")
	}
	if err := r.Start.validate("start"); err != nil {
		return err
	}
	return r.Destination.validate("destination")
}

func (p *GeoPoint) validate(field string) error {
	if p.Lat < -90 || p.Lat > 90 {
		return ErrInvalidInput(fmt.Sprintf("%s.lat must be between -90 and 90", field))
	}
	if p.Lon < -180 || p.Lon > 180 {
		return ErrInvalidInput(fmt.Sprintf("%s.lon must be between -180 and 180", field))
	}
	return nil
}

// SegmentDetail is one leg of an itinerary, attributed to its destination stop
type SegmentDetail struct {
	FromStop        string  `json:"from_stop"`
	ToStop          string  `json:"to_stop"`
	RouteID         string  `json:"route_id"`
	DurationSeconds float64 `json:"duration_sec"`
	StopRiskScore   float64 `json:"stop_risk_score"`
}

// RouteResult is the itinerary returned for a successful query
type RouteResult struct {
	StartStop            string          `json:"start_stop"`
	EndStop              string          `json:"end_stop"`
	Segments             []SegmentDetail `json:"segments"`
	TotalDurationMinutes float64         `json:"total_duration_minutes"`
	TotalAccumulatedRisk float64         `json:"total_accumulated_risk"`
	Path                 []string        `json:"path"`
	TotalWeight          float64         `json:"total_weight"`
}

// NotFoundReason explains why a query produced no route
type NotFoundReason string

const (
	ReasonNoStops NotFoundReason = "no_stops"
	ReasonNoPath  NotFoundReason = "no_path"
	ReasonTooFar  NotFoundReason = "too_far"
)

// HealthStatus is the readiness surface of the routing service
type HealthStatus struct {
	Status        string     `json:"status"` // "unloaded", "loading", "ready"
	NodesLoaded   int        `json:"nodes_loaded"`
	EdgesLoaded   int        `json:"edges_loaded"`
	LoadedAt      *time.Time `json:"loaded_at,omitempty"`
	LastLoadError string     `json:"last_load_error,omitempty"`
}
