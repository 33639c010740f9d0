package geocode

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"github.com/SomeLazyDayz/Backend-15-11/internal/core/domain"
)

// GoogleGeocoder implements ports.Geocoder against the Google Maps
// Geocoding API.
type GoogleGeocoder struct {
	client *maps.Client
}

// NewGoogleGeocoder creates a geocoder with the given API key.
func NewGoogleGeocoder(apiKey string) (*GoogleGeocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("maps client: %w", err)
	}
	return &GoogleGeocoder{client: client}, nil
}

// Geocode resolves a free-form address to coordinates. An address the
// API cannot resolve yields (nil, nil) rather than an error, so callers
// can continue without a location.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (*domain.GeoPoint, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", address, err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	loc := results[0].Geometry.Location
	point, err := domain.NewGeoPoint(loc.Lat, loc.Lng)
	if err != nil {
		// Out-of-range coordinates from the API are treated as no result.
		return nil, nil
	}
	return &point, nil
}
