// Package geo provides coordinate validation and great-circle distance
// math shared by the acquisition service and the reverse geocoder.
package geo

import (
	"fmt"
	"math"
)

const earthRadiusMeters = 6371000

// GeoPoint represents a validated geographic point.
type GeoPoint struct {
	latitude  float64
	longitude float64
}

// NewGeoPoint creates a GeoPoint, rejecting out-of-range or non-finite
// coordinates.
func NewGeoPoint(lat, lng float64) (*GeoPoint, error) {
	if err := ValidateCoordinates(lat, lng); err != nil {
		return nil, err
	}
	return &GeoPoint{latitude: lat, longitude: lng}, nil
}

// Latitude returns the latitude value.
func (g GeoPoint) Latitude() float64 {
	return g.latitude
}

// Longitude returns the longitude value.
func (g GeoPoint) Longitude() float64 {
	return g.longitude
}

// DistanceTo calculates the distance to another point in meters using the
// Haversine formula.
func (g GeoPoint) DistanceTo(other GeoPoint) float64 {
	return Distance(g.latitude, g.longitude, other.latitude, other.longitude)
}

// String returns a string representation of the geographic point.
func (g GeoPoint) String() string {
	return fmt.Sprintf("(%f, %f)", g.latitude, g.longitude)
}

// Distance computes the great-circle distance in meters between two
// (lat, lng) pairs given in degrees. Symmetric, and zero only when the
// points are identical.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	rlat1 := degreesToRadians(lat1)
	rlat2 := degreesToRadians(lat2)
	dlat := rlat2 - rlat1
	dlng := degreesToRadians(lng2) - degreesToRadians(lng1)

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*
			math.Sin(dlng/2)*math.Sin(dlng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// ValidateCoordinates checks that a latitude/longitude pair is finite and
// within the ±90/±180 range.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %f is outside valid range [-90, 90]", lat)
	}
	if math.IsNaN(lng) || math.IsInf(lng, 0) || lng < -180 || lng > 180 {
		return fmt.Errorf("longitude %f is outside valid range [-180, 180]", lng)
	}
	return nil
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
