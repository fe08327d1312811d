package geo

import (
	"fmt"
)

// Point is a WGS84 latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// NewPoint validates and creates a Point.
func NewPoint(lat, lon float64) (Point, error) {
	if !ValidateCoordinates(lat, lon) {
		return Point{}, fmt.Errorf("coordinates out of range: %f, %f", lat, lon)
	}
	return Point{Lat: lat, Lon: lon}, nil
}

// String renders the point with six decimals, enough for ~10 cm precision.
func (p Point) String() string {
	return fmt.Sprintf("%.6f, %.6f", p.Lat, p.Lon)
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
// NaN values fail both comparisons and are rejected.
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
