package geo

import (
	"math"

	"github.com/citypath/service-routing/internal/domain/errs"
)

const earthRadiusM = 6371000.0

// Coordinate is an immutable latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks the coordinate invariant: latitude in [-90, 90] and
// longitude in [-180, 180], both inclusive. NaN and infinities are rejected.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) ||
		math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) {
		return errs.NewValidationError("coordinate must be numeric")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return errs.NewValidationError("latitude must be within [-90, 90]")
	}
	if c.Lon < -180 || c.Lon > 180 {
		return errs.NewValidationError("longitude must be within [-180, 180]")
	}
	return nil
}

// DistanceM returns the great-circle distance to other in metres.
func (c Coordinate) DistanceM(other Coordinate) float64 {
	lat1 := degToRad(c.Lat)
	lon1 := degToRad(c.Lon)
	lat2 := degToRad(other.Lat)
	lon2 := degToRad(other.Lon)

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Midpoint returns the arithmetic midpoint between two coordinates.
// Good enough at city scale; not antimeridian-safe.
func (c Coordinate) Midpoint(other Coordinate) Coordinate {
	return Coordinate{
		Lat: (c.Lat + other.Lat) / 2,
		Lon: (c.Lon + other.Lon) / 2,
	}
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
