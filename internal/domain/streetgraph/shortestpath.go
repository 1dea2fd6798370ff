package streetgraph

import "container/heap"

// Mode selects the edge weight used for shortest-path computation.
type Mode string

const (
	// ModeDistance weighs edges by their length in metres.
	ModeDistance Mode = "distance"
	// ModeTime weighs edges by their travel time in seconds.
	ModeTime Mode = "time"
)

// IsValid reports whether the mode is a recognized routing mode.
func (m Mode) IsValid() bool {
	return m == ModeDistance || m == ModeTime
}

// Weight returns the edge weight under this mode.
func (m Mode) Weight(e Edge) float64 {
	if m == ModeTime {
		return e.DurationS()
	}
	return e.LengthM
}

type pqItem struct {
	node NodeID
	dist float64
}

type pq []pqItem

func (p pq) Len() int           { return len(p) }
func (p pq) Less(i, j int) bool { return p[i].dist < p[j].dist }
func (p pq) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }
func (p *pq) Push(x any)        { *p = append(*p, x.(pqItem)) }
func (p *pq) Pop() any {
	old := *p
	n := len(old)
	item := old[n-1]
	*p = old[:n-1]
	return item
}

// ShortestPath runs Dijkstra from src to dst using the mode's edge weight.
// It returns the node sequence including both endpoints, or found=false when
// dst is unreachable. A src equal to dst yields a single-node path.
// Relaxation uses strict less-than, so repeated runs over the same graph
// produce the same path.
func (g *Graph) ShortestPath(src, dst NodeID, mode Mode) (path []NodeID, found bool) {
	if _, ok := g.Nodes[src]; !ok {
		return nil, false
	}
	if _, ok := g.Nodes[dst]; !ok {
		return nil, false
	}
	if src == dst {
		return []NodeID{src}, true
	}

	dist := map[NodeID]float64{src: 0}
	prev := map[NodeID]NodeID{}
	settled := map[NodeID]bool{}

	q := &pq{}
	heap.Push(q, pqItem{node: src, dist: 0})

	for q.Len() > 0 {
		cur := heap.Pop(q).(pqItem)
		u := cur.node
		if settled[u] {
			continue
		}
		settled[u] = true

		if u == dst {
			break
		}

		for _, e := range g.Adj[u] {
			nd := dist[u] + mode.Weight(e)
			old, seen := dist[e.To]
			if !seen || nd < old {
				dist[e.To] = nd
				prev[e.To] = u
				heap.Push(q, pqItem{node: e.To, dist: nd})
			}
		}
	}

	if !settled[dst] {
		return nil, false
	}

	path = []NodeID{}
	for cur := dst; cur != src; cur = prev[cur] {
		path = append(path, cur)
	}
	path = append(path, src)

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, true
}
