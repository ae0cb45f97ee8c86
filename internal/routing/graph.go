package routing

import "sort"

// Stop is a graph node
type Stop struct {
	ID        string
	Name      string
	Lat       float64
	Lon       float64
	RiskScore float64
}

// Segment is a directed edge aggregated over every trip that serves the pair
type Segment struct {
	From            string
	To              string
	DurationSeconds float64
	RouteID         string
	Weight          float64
	DestinationRisk float64
}

type edgeKey struct {
	from string
	to   string
}

// Graph is an immutable routable network. It is safe for concurrent readers.
type Graph struct {
	stops     map[string]*Stop
	order     []string
	outgoing  map[string][]*Segment
	segments  map[edgeKey]*Segment
	edgeCount int
}

func newGraph(stops []*Stop, segments []*Segment) *Graph {
	g := &Graph{
		stops:    make(map[string]*Stop, len(stops)),
		order:    make([]string, 0, len(stops)),
		outgoing: make(map[string][]*Segment),
		segments: make(map[edgeKey]*Segment, len(segments)),
	}

	for _, s := range stops {
		g.stops[s.ID] = s
		g.order = append(g.order, s.ID)
	}
	sort.Strings(g.order)

	for _, seg := range segments {
		g.segments[edgeKey{seg.From, seg.To}] = seg
		g.outgoing[seg.From] = append(g.outgoing[seg.From], seg)
	}
	for from := range g.outgoing {
		out := g.outgoing[from]
		sort.Slice(out, func(i, j int) bool { return out[i].To < out[j].To })
	}
	g.edgeCount = len(g.segments)

	return g
}

// NodeCount returns the number of stops
func (g *Graph) NodeCount() int {
	if g == nil {
		return 0
	}
	return len(g.stops)
}

// EdgeCount returns the number of segments
func (g *Graph) EdgeCount() int {
	if g == nil {
		return 0
	}
	return g.edgeCount
}

// Stop looks up a stop by id
func (g *Graph) Stop(id string) (*Stop, bool) {
	s, ok := g.stops[id]
	return s, ok
}

// Segment looks up the directed segment from -> to
func (g *Graph) Segment(from, to string) (*Segment, bool) {
	s, ok := g.segments[edgeKey{from, to}]
	return s, ok
}

// Outgoing returns the segments leaving a stop, ordered by destination id.
// The returned slice must not be modified.
func (g *Graph) Outgoing(id string) []*Segment {
	return g.outgoing[id]
}

// StopIDs returns every stop id in ascending order
func (g *Graph) StopIDs() []string {
	ids := make([]string, len(g.order))
	copy(ids, g.order)
	return ids
}
