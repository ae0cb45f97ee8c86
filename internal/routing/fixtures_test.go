package routing

import "github.com/smarttransit/saferoute-backend/internal/models"

// duesseldorfNetwork is the four-stop network used across tests:
// T1 runs S1 -> S2 (300s) -> S3 (420s), T2 runs S3 -> S4 (600s).
func duesseldorfNetwork() *models.NetworkData {
	return &models.NetworkData{
		Stops: []models.StopRecord{
			{StopID: "S1", StopName: "Düsseldorf Hbf", Lat: 51.2198, Lon: 6.7943},
			{StopID: "S2", StopName: "Heinrich-Heine-Allee", Lat: 51.2255, Lon: 6.7776},
			{StopID: "S3", StopName: "Bilk S", Lat: 51.2064, Lon: 6.7725},
			{StopID: "S4", StopName: "Uni Ost/Botanischer Garten", Lat: 51.1895, Lon: 6.8021},
		},
		StopTimes: []models.StopTimeRecord{
			{TripID: "T1", StopID: "S1", StopSequence: 1, ArrivalTime: "08:00:00", DepartureTime: "08:00:00"},
			{TripID: "T1", StopID: "S2", StopSequence: 2, ArrivalTime: "08:05:00", DepartureTime: "08:05:00"},
			{TripID: "T1", StopID: "S3", StopSequence: 3, ArrivalTime: "08:12:00", DepartureTime: "08:12:00"},
			{TripID: "T2", StopID: "S3", StopSequence: 1, ArrivalTime: "08:15:00", DepartureTime: "08:15:00"},
			{TripID: "T2", StopID: "S4", StopSequence: 2, ArrivalTime: "08:25:00", DepartureTime: "08:25:00"},
		},
		TripRoutes: []models.TripRouteRecord{
			{TripID: "T1", RouteID: "R1"},
			{TripID: "T2", RouteID: "R2"},
		},
	}
}

// detourNetwork has a short direct line through a risky stop R and a longer line
// through a safe stop S; both end at E.
func detourNetwork(riskAtR float64) *models.NetworkData {
	return &models.NetworkData{
		Stops: []models.StopRecord{
			{StopID: "A", StopName: "Origin", Lat: 0, Lon: 0},
			{StopID: "R", StopName: "Risky Junction", Lat: 0, Lon: 1},
			{StopID: "S", StopName: "Safe Loop", Lat: 1, Lon: 1},
			{StopID: "E", StopName: "Destination", Lat: 0, Lon: 2},
		},
		Risks: []models.RiskRecord{
			{StopID: "R", RiskScore: riskAtR},
		},
		StopTimes: []models.StopTimeRecord{
			{TripID: "DIRECT", StopID: "A", StopSequence: 1, ArrivalTime: "09:00:00", DepartureTime: "09:00:00"},
			{TripID: "DIRECT", StopID: "R", StopSequence: 2, ArrivalTime: "09:05:00", DepartureTime: "09:05:00"},
			{TripID: "DIRECT", StopID: "E", StopSequence: 3, ArrivalTime: "09:10:00", DepartureTime: "09:10:00"},
			{TripID: "LOOP", StopID: "A", StopSequence: 1, ArrivalTime: "09:00:00", DepartureTime: "09:00:00"},
			{TripID: "LOOP", StopID: "S", StopSequence: 2, ArrivalTime: "09:06:40", DepartureTime: "09:06:40"},
			{TripID: "LOOP", StopID: "E", StopSequence: 3, ArrivalTime: "09:13:20", DepartureTime: "09:13:20"},
		},
		TripRoutes: []models.TripRouteRecord{
			{TripID: "DIRECT", RouteID: "U79"},
			{TripID: "LOOP", RouteID: "707"},
		},
	}
}
