package models

// StopRecord is one row of the upstream stop relation
type StopRecord struct {
	StopID   string  `json:"stop_id" db:"stop_id"`
	StopName string  `json:"stop_name" db:"stop_name"`
	Lat      float64 `json:"stop_lat" db:"stop_lat"`
	Lon      float64 `json:"stop_lon" db:"stop_lon"`
}

// RiskRecord is one row of the per-stop risk relation.
// Stops without a row are treated as risk 0.
type RiskRecord struct {
	StopID    string  `json:"stop_id" db:"stop_id"`
	RiskScore float64 `json:"risk_score" db:"risk_score"`
}

// StopTimeRecord is one row of the normalized stop-time relation.
// Clock times use the HH:MM:SS service-day format.
type StopTimeRecord struct {
	TripID        string `json:"trip_id" db:"trip_id"`
	StopID        string `json:"stop_id" db:"stop_id"`
	StopSequence  int    `json:"stop_sequence" db:"stop_sequence"`
	ArrivalTime   string `json:"arrival_time" db:"arrival_time"`
	DepartureTime string `json:"departure_time" db:"departure_time"`
}

// TripRouteRecord maps a trip to the route it runs on
type TripRouteRecord struct {
	TripID  string `json:"trip_id" db:"trip_id"`
	RouteID string `json:"route_id" db:"route_id"`
}

// NetworkData bundles the four upstream relations a graph is built from
type NetworkData struct {
	Stops      []StopRecord
	Risks      []RiskRecord
	StopTimes  []StopTimeRecord
	TripRoutes []TripRouteRecord
}
