package matching

import (
	"time"

	"github.com/SomeLazyDayz/Backend-15-11/internal/core/domain"
)

// DefaultCooldownDays is how long after a donation a donor is unlikely to be
// eligible to donate again.
const DefaultCooldownDays = 90

// cooldownPenalty halves the score of donors inside the cooldown window so
// they always rank strictly below an equally-distant donor outside it.
const cooldownPenalty = 0.5

// RecencyScorer is the baseline scoring policy: inverse distance, penalised
// for donors who donated within the cooldown window. Donors with no recorded
// donation are treated as fully eligible.
type RecencyScorer struct {
	Cooldown time.Duration

	// Now is swappable for deterministic tests; nil means time.Now.
	Now func() time.Time
}

// NewRecencyScorer builds the baseline policy with a cooldown in days.
// cooldownDays <= 0 falls back to DefaultCooldownDays.
func NewRecencyScorer(cooldownDays int) *RecencyScorer {
	if cooldownDays <= 0 {
		cooldownDays = DefaultCooldownDays
	}
	return &RecencyScorer{Cooldown: time.Duration(cooldownDays) * 24 * time.Hour}
}

// Score returns a value in (0,1]: 1/(1+distanceKm), halved inside the
// cooldown window. Finite and NaN-free for every distanceKm >= 0.
func (s *RecencyScorer) Score(donor domain.Donor, distanceKm float64) float64 {
	score := 1.0 / (1.0 + distanceKm)
	if s.inCooldown(donor.LastDonation) {
		score *= cooldownPenalty
	}
	return score
}

func (s *RecencyScorer) inCooldown(lastDonation *time.Time) bool {
	if lastDonation == nil {
		return false
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	return now.Sub(*lastDonation) < s.Cooldown
}
