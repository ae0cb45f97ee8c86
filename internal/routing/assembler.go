package routing

import (
	"fmt"

	"github.com/smarttransit/saferoute-backend/internal/models"
)

// AssembleRoute turns a path from g into an itinerary. Each segment is attributed to its
// destination stop, so the accumulated risk includes the final stop and excludes the start.
func AssembleRoute(g *Graph, path Path) (*models.RouteResult, error) {
	if len(path.Stops) == 0 {
		return nil, fmt.Errorf("cannot assemble an empty path")
	}

	first, ok := g.Stop(path.Stops[0])
	if !ok {
		return nil, fmt.Errorf("path start %q is not in the graph", path.Stops[0])
	}
	last, ok := g.Stop(path.Stops[len(path.Stops)-1])
	if !ok {
		return nil, fmt.Errorf("path end %q is not in the graph", path.Stops[len(path.Stops)-1])
	}

	result := &models.RouteResult{
		StartStop: first.Name,
		EndStop:   last.Name,
		Segments:  make([]models.SegmentDetail, 0, len(path.Stops)-1),
		Path:      append([]string(nil), path.Stops...),
	}

	totalSeconds := 0.0
	for i := 0; i+1 < len(path.Stops); i++ {
		seg, ok := g.Segment(path.Stops[i], path.Stops[i+1])
		if !ok {
			return nil, fmt.Errorf("no segment %s->%s in graph", path.Stops[i], path.Stops[i+1])
		}
		from, _ := g.Stop(seg.From)
		to, _ := g.Stop(seg.To)

		result.Segments = append(result.Segments, models.SegmentDetail{
			FromStop:        from.Name,
			ToStop:          to.Name,
			RouteID:         seg.RouteID,
			DurationSeconds: seg.DurationSeconds,
			StopRiskScore:   seg.DestinationRisk,
		})
		totalSeconds += seg.DurationSeconds
		result.TotalAccumulatedRisk += seg.DestinationRisk
		result.TotalWeight += seg.Weight
	}
	result.TotalDurationMinutes = totalSeconds / 60

	return result, nil
}
