// Package matching implements the donor proximity and ranking pipeline:
// radius filtering, pluggable suitability scoring, and deterministic
// rank-and-truncate. The pipeline is a pure computation over the donor
// snapshot it is handed; it holds no state and is safe for concurrent use.
package matching

import (
	"sort"

	"github.com/SomeLazyDayz/Backend-15-11/internal/core/domain"
	"github.com/SomeLazyDayz/Backend-15-11/internal/pkg/geospatial"
)

// DefaultMaxMatches caps the shortlist returned to callers.
const DefaultMaxMatches = 50

// Scorer assigns a suitability score to a donor at a known distance.
// Higher is better. Implementations must be pure functions of their inputs
// and return a finite, NaN-free value for every valid input.
type Scorer interface {
	Score(donor domain.Donor, distanceKm float64) float64
}

// Candidate is a donor paired with its computed distance from the hospital.
type Candidate struct {
	Donor      domain.Donor
	DistanceKm float64
}

// FilterByRadius computes the great-circle distance from origin to every
// donor and keeps those within radiusKm (inclusive boundary). A non-positive
// radius yields an empty result. Donors without a location never reach this
// stage (the directory snapshot guarantees it), but a nil location is skipped
// defensively rather than dereferenced.
func FilterByRadius(origin domain.GeoPoint, donors []domain.Donor, radiusKm float64) []Candidate {
	if radiusKm <= 0 {
		return nil
	}
	candidates := make([]Candidate, 0, len(donors))
	for _, d := range donors {
		if d.Location == nil {
			continue
		}
		dist := geospatial.DistanceKm(origin.Lat, origin.Lng, d.Location.Lat, d.Location.Lng)
		if dist <= radiusKm {
			candidates = append(candidates, Candidate{Donor: d, DistanceKm: dist})
		}
	}
	return candidates
}

// Engine runs the full pipeline for one request. maxMatches <= 0 falls back
// to DefaultMaxMatches.
type Engine struct {
	scorer     Scorer
	maxMatches int
}

// NewEngine creates an Engine with the given scoring policy.
func NewEngine(scorer Scorer, maxMatches int) *Engine {
	if maxMatches <= 0 {
		maxMatches = DefaultMaxMatches
	}
	return &Engine{scorer: scorer, maxMatches: maxMatches}
}

// Match filters donors by radius, scores the survivors, ranks them by score
// desc / distance asc / donor id asc, and truncates to the shortlist cap.
// It returns the shortlist and the total matched count before truncation.
func (e *Engine) Match(hospital domain.GeoPoint, donors []domain.Donor, radiusKm float64) ([]domain.DonorMatch, int) {
	candidates := FilterByRadius(hospital, donors, radiusKm)

	matches := make([]domain.DonorMatch, 0, len(candidates))
	for _, c := range candidates {
		matches = append(matches, domain.DonorMatch{
			Donor:      c.Donor,
			DistanceKm: c.DistanceKm,
			Score:      e.scorer.Score(c.Donor, c.DistanceKm),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].DistanceKm != matches[j].DistanceKm {
			return matches[i].DistanceKm < matches[j].DistanceKm
		}
		return matches[i].Donor.ID < matches[j].Donor.ID
	})

	total := len(matches)
	if total > e.maxMatches {
		matches = matches[:e.maxMatches]
	}
	return matches, total
}
