package geospatial

import (
	"math"
	"testing"
)

func TestDistanceKm_KnownDistance(t *testing.T) {
	// Hanoi to Ho Chi Minh City, roughly 1140-1170 km great-circle.
	got := DistanceKm(21.0285, 105.8542, 10.8231, 106.6297)
	if got < 1100 || got > 1200 {
		t.Errorf("Hanoi-HCMC distance = %.1f km, want ~1140 km", got)
	}
}

func TestDistanceKm_Symmetry(t *testing.T) {
	pairs := [][4]float64{
		{21.0285, 105.8542, 10.8231, 106.6297},
		{0, 0, 10, 10},
		{-33.8688, 151.2093, 51.5074, -0.1278},
		{89.9, 179.9, -89.9, -179.9},
	}
	for _, p := range pairs {
		ab := DistanceKm(p[0], p[1], p[2], p[3])
		ba := DistanceKm(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("distance not symmetric: %.12f vs %.12f for %v", ab, ba, p)
		}
	}
}

func TestDistanceKm_ZeroForSamePoint(t *testing.T) {
	if d := DistanceKm(43.263, -2.935, 43.263, -2.935); d != 0 {
		t.Errorf("distance for identical points = %v, want 0", d)
	}
}

func TestDistanceKm_NonNegative(t *testing.T) {
	if d := DistanceKm(-90, -180, 90, 180); d < 0 {
		t.Errorf("distance = %v, want >= 0", d)
	}
}

func TestBoundingBox_ContainsCenter(t *testing.T) {
	minLat, minLng, maxLat, maxLng := BoundingBox(21.0285, 105.8542, 10)
	if minLat >= 21.0285 || maxLat <= 21.0285 {
		t.Errorf("latitude bounds [%v,%v] do not contain center", minLat, maxLat)
	}
	if minLng >= 105.8542 || maxLng <= 105.8542 {
		t.Errorf("longitude bounds [%v,%v] do not contain center", minLng, maxLng)
	}
}
