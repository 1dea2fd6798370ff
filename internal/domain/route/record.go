// Package route holds the route-history domain model: one record per
// successfully computed route.
package route

import (
	"time"

	"github.com/google/uuid"

	"github.com/citypath/service-routing/internal/domain/geo"
)

// Record captures the outcome of one routing request.
type Record struct {
	ID          uuid.UUID
	Origin      geo.Coordinate
	Destination geo.Coordinate
	Mode        string
	DistanceM   float64
	DurationS   float64
	NodeCount   int
	CreatedAt   time.Time
}

// NewRecord creates a history record for a computed route.
func NewRecord(origin, destination geo.Coordinate, mode string, distanceM, durationS float64, nodeCount int) *Record {
	return &Record{
		ID:          uuid.New(),
		Origin:      origin,
		Destination: destination,
		Mode:        mode,
		DistanceM:   distanceM,
		DurationS:   durationS,
		NodeCount:   nodeCount,
		CreatedAt:   time.Now().UTC(),
	}
}
