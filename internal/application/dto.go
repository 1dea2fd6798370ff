package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/citypath/service-routing/internal/domain/geo"
)

// RouteRequest is the request body for route computation.
type RouteRequest struct {
	Origin      *geo.Coordinate `json:"origin" binding:"required"`
	Destination *geo.Coordinate `json:"destination" binding:"required"`
	// Mode selects the edge weight: "distance" (default) or "time".
	Mode string `json:"mode"`
}

// RouteGeometry is a GeoJSON-like LineString. Coordinates are [lat, lon]
// pairs, the order the map widget consumes.
type RouteGeometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

// RouteStep is one leg of the route, corresponding to a single graph edge.
type RouteStep struct {
	FromNode  int64   `json:"from_node"`
	ToNode    int64   `json:"to_node"`
	DistanceM float64 `json:"distance_m"`
	DurationS float64 `json:"duration_s"`
}

// RouteSummary repeats the totals with the geometry as a plain coordinate
// list, for clients that do not want the GeoJSON-like wrapper.
type RouteSummary struct {
	DistanceM float64     `json:"distance_m"`
	DurationS float64     `json:"duration_s"`
	Geometry  [][]float64 `json:"geometry"`
}

// RouteResult is the response for a computed route. It is deterministic for
// identical inputs against an unchanged graph.
type RouteResult struct {
	DistanceM float64       `json:"distance_m"`
	DurationS float64       `json:"duration_s"`
	Geometry  RouteGeometry `json:"geometry"`
	Summary   RouteSummary  `json:"summary"`
	Steps     []RouteStep   `json:"steps"`
	Warnings  []string      `json:"warnings"`
}

// RouteRecordDTO is the response representation of a history record.
type RouteRecordDTO struct {
	ID          uuid.UUID      `json:"id"`
	Origin      geo.Coordinate `json:"origin"`
	Destination geo.Coordinate `json:"destination"`
	Mode        string         `json:"mode"`
	DistanceM   float64        `json:"distance_m"`
	DurationS   float64        `json:"duration_s"`
	NodeCount   int            `json:"node_count"`
	CreatedAt   time.Time      `json:"created_at"`
}
