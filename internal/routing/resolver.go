package routing

import "errors"

// ErrNoStops is returned when resolving against a graph without stops
var ErrNoStops = errors.New("no stops loaded")

// NearestStop returns the stop closest to (lat, lon) by squared planar degree distance.
// No projection correction is applied and no distance cutoff is enforced. Stops are
// scanned in ascending id order and the first minimum wins.
func (g *Graph) NearestStop(lat, lon float64) (*Stop, error) {
	if g.NodeCount() == 0 {
		return nil, ErrNoStops
	}

	var best *Stop
	bestDist := 0.0
	for _, id := range g.order {
		s := g.stops[id]
		dLat := s.Lat - lat
		dLon := s.Lon - lon
		dist := dLat*dLat + dLon*dLon
		if best == nil || dist < bestDist {
			best = s
			bestDist = dist
		}
	}
	return best, nil
}
