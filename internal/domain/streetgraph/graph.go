// Package streetgraph holds the routable street-network model: intersections
// as nodes, street segments as weighted directed edges, scoped to a bounding
// area. A graph is mutable while being assembled and treated as read-only
// once handed to the routing service or the cache.
package streetgraph

import (
	"sort"

	"github.com/citypath/service-routing/internal/domain/geo"
)

// NodeID identifies a graph node. IDs follow the upstream OSM node IDs.
type NodeID int64

// Node is an intersection with its position.
type Node struct {
	ID  NodeID  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Coordinate returns the node position as a geo.Coordinate.
func (n Node) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: n.Lat, Lon: n.Lon}
}

// Edge is a directed street segment to a neighboring node.
type Edge struct {
	To       NodeID  `json:"to"`
	LengthM  float64 `json:"length_m"`
	SpeedKMH float64 `json:"speed_kmh"`
}

// DurationS returns the travel time over the edge in seconds.
func (e Edge) DurationS() float64 {
	speed := e.SpeedKMH
	if speed <= 0 {
		speed = 1
	}
	return e.LengthM / (speed * 1000 / 3600)
}

// Graph is a directed street network.
type Graph struct {
	Nodes map[NodeID]Node   `json:"nodes"`
	Adj   map[NodeID][]Edge `json:"adj"`
	BBox  geo.BoundingBox   `json:"bbox"`
}

// New creates an empty graph scoped to the given bounding box.
func New(bbox geo.BoundingBox) *Graph {
	return &Graph{
		Nodes: make(map[NodeID]Node),
		Adj:   make(map[NodeID][]Edge),
		BBox:  bbox,
	}
}

// AddNode inserts or replaces a node.
func (g *Graph) AddNode(id NodeID, lat, lon float64) {
	g.Nodes[id] = Node{ID: id, Lat: lat, Lon: lon}
}

// AddEdge appends a directed edge from one node to another. Both endpoints
// must already exist; unknown endpoints are ignored.
func (g *Graph) AddEdge(from, to NodeID, lengthM, speedKMH float64) {
	if _, ok := g.Nodes[from]; !ok {
		return
	}
	if _, ok := g.Nodes[to]; !ok {
		return
	}
	g.Adj[from] = append(g.Adj[from], Edge{To: to, LengthM: lengthM, SpeedKMH: speedKMH})
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, edges := range g.Adj {
		total += len(edges)
	}
	return total
}

// Covers reports whether the graph's bounding box fully contains the given box.
func (g *Graph) Covers(bbox geo.BoundingBox) bool {
	return g.BBox.Covers(bbox)
}

// EdgeBetween returns the first edge from one node to another.
func (g *Graph) EdgeBetween(from, to NodeID) (Edge, bool) {
	for _, e := range g.Adj[from] {
		if e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

// NearestNode snaps a coordinate to the closest node by great-circle
// distance. Nodes are scanned in ID order so that equidistant candidates
// resolve deterministically. Returns false for an empty graph.
func (g *Graph) NearestNode(c geo.Coordinate) (NodeID, float64, bool) {
	if len(g.Nodes) == 0 {
		return 0, 0, false
	}

	ids := make([]NodeID, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var (
		best     NodeID
		bestDist = -1.0
	)
	for _, id := range ids {
		d := c.DistanceM(g.Nodes[id].Coordinate())
		if bestDist < 0 || d < bestDist {
			best = id
			bestDist = d
		}
	}
	return best, bestDist, true
}
