package geo

import (
	"fmt"
	"math"
)

// BoundingBox is a geographic rectangle delimited by its edges in degrees.
type BoundingBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// BoxFromCenter builds the bounding box of a circle with the given radius
// (metres) around center. Latitude and longitude deltas are clamped to the
// valid coordinate ranges.
func BoxFromCenter(center Coordinate, radiusM float64) BoundingBox {
	dLat := radiusM / earthRadiusM * 180 / math.Pi
	// Longitude degrees shrink with latitude.
	cosLat := math.Cos(degToRad(center.Lat))
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	dLon := dLat / cosLat

	return BoundingBox{
		North: math.Min(center.Lat+dLat, 90),
		South: math.Max(center.Lat-dLat, -90),
		East:  math.Min(center.Lon+dLon, 180),
		West:  math.Max(center.Lon-dLon, -180),
	}
}

// Contains reports whether the coordinate lies inside the box (inclusive).
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Lat >= b.South && c.Lat <= b.North &&
		c.Lon >= b.West && c.Lon <= b.East
}

// Covers reports whether this box fully contains other.
func (b BoundingBox) Covers(other BoundingBox) bool {
	return other.North <= b.North && other.South >= b.South &&
		other.East <= b.East && other.West >= b.West
}

// Quantized snaps the box edges outward to a grid with the given step in
// degrees, so that nearby requests map to the same box.
func (b BoundingBox) Quantized(step float64) BoundingBox {
	if step <= 0 {
		return b
	}
	return BoundingBox{
		North: math.Ceil(b.North/step) * step,
		South: math.Floor(b.South/step) * step,
		East:  math.Ceil(b.East/step) * step,
		West:  math.Floor(b.West/step) * step,
	}
}

// Key returns a deterministic string identifier for the box, usable as a
// cache key and as a filename fragment.
func (b BoundingBox) Key() string {
	return fmt.Sprintf("%.4f_%.4f_%.4f_%.4f", b.South, b.West, b.North, b.East)
}
