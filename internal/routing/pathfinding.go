package routing

import "container/heap"

// Path is an ordered list of stop ids and its total weight
type Path struct {
	Stops  []string
	Weight float64
}

// ShortestPath runs Dijkstra from start to end over segment weights.
// It reports false when either stop is unknown or end is unreachable.
// A start equal to end yields a single-stop path of weight 0.
func ShortestPath(g *Graph, start, end string) (Path, bool) {
	if _, ok := g.Stop(start); !ok {
		return Path{}, false
	}
	if _, ok := g.Stop(end); !ok {
		return Path{}, false
	}
	if start == end {
		return Path{Stops: []string{start}}, true
	}

	dist := map[string]float64{start: 0}
	cameFrom := make(map[string]string)
	settled := make(map[string]bool)

	pq := &priorityQueue{}
	heap.Init(pq)
	seq := 0
	heap.Push(pq, &pqItem{node: start, priority: 0, seq: seq})

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*pqItem)
		current := item.node
		if settled[current] {
			continue
		}
		settled[current] = true

		if current == end {
			return Path{Stops: reconstructPath(cameFrom, start, end), Weight: dist[end]}, true
		}

		for _, seg := range g.Outgoing(current) {
			if settled[seg.To] {
				continue
			}
			tentative := dist[current] + seg.Weight
			if old, ok := dist[seg.To]; !ok || tentative < old {
				dist[seg.To] = tentative
				cameFrom[seg.To] = current
				seq++
				heap.Push(pq, &pqItem{node: seg.To, priority: tentative, seq: seq})
			}
		}
	}

	return Path{}, false
}

func reconstructPath(cameFrom map[string]string, start, end string) []string {
	var reversed []string
	for current := end; ; {
		reversed = append(reversed, current)
		if current == start {
			break
		}
		current = cameFrom[current]
	}

	path := make([]string, len(reversed))
	for i, id := range reversed {
		path[len(reversed)-1-i] = id
	}
	return path
}

type pqItem struct {
	node     string
	priority float64
	seq      int
}

// priorityQueue orders by priority, then by push order
type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].priority == pq[j].priority {
		return pq[i].seq < pq[j].seq
	}
	return pq[i].priority < pq[j].priority
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *priorityQueue) Push(x interface{}) {
	item := x.(*pqItem)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}
