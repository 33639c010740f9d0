package domain

import "fmt"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewGeoPoint validates coordinate ranges and returns the point.
// A GeoPoint is immutable once constructed.
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	if lat < -90 || lat > 90 {
		return GeoPoint{}, fmt.Errorf("%w: latitude %.6f out of range [-90,90]", ErrValidation, lat)
	}
	if lng < -180 || lng > 180 {
		return GeoPoint{}, fmt.Errorf("%w: longitude %.6f out of range [-180,180]", ErrValidation, lng)
	}
	return GeoPoint{Lat: lat, Lng: lng}, nil
}
