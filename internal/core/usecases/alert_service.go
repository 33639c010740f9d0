package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SomeLazyDayz/Backend-15-11/internal/core/domain"
	"github.com/SomeLazyDayz/Backend-15-11/internal/core/matching"
	"github.com/SomeLazyDayz/Backend-15-11/internal/core/ports"
	"github.com/SomeLazyDayz/Backend-15-11/internal/pkg/metrics"
)

// DefaultRadiusKm is used when a request omits the search radius.
const DefaultRadiusKm = 10.0

// AlertService orchestrates one blood alert: validate the request, resolve
// the hospital, run the matching pipeline over a donor snapshot, and shape
// the response. It never mutates persisted data, so no failure needs a
// rollback.
type AlertService struct {
	hospitals ports.HospitalRepository
	donors    ports.DonorRepository
	scorer    matching.Scorer
	publisher ports.EventPublisher // optional; events are best-effort

	defaultRadiusKm float64
	maxMatches      int
}

// NewAlertService creates a new AlertService. publisher may be nil when the
// broker is unavailable. defaultRadiusKm <= 0 and maxMatches <= 0 fall back
// to the package defaults.
func NewAlertService(
	hospitals ports.HospitalRepository,
	donors ports.DonorRepository,
	scorer matching.Scorer,
	publisher ports.EventPublisher,
	defaultRadiusKm float64,
	maxMatches int,
) *AlertService {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = DefaultRadiusKm
	}
	return &AlertService{
		hospitals:       hospitals,
		donors:          donors,
		scorer:          scorer,
		publisher:       publisher,
		defaultRadiusKm: defaultRadiusKm,
		maxMatches:      maxMatches,
	}
}

// CreateAlert runs the full matching pipeline for a hospital request.
// Outcomes: a validation error before any store access, a not-found error
// when the hospital does not resolve, or a success result (an empty shortlist
// with TotalMatched = 0 is a valid success).
func (s *AlertService) CreateAlert(ctx context.Context, req domain.AlertRequest) (*domain.AlertResult, error) {
	if req.HospitalID == 0 {
		return nil, fmt.Errorf("%w: hospital_id is required", domain.ErrValidation)
	}
	if req.BloodType == "" {
		return nil, fmt.Errorf("%w: blood_type is required", domain.ErrValidation)
	}

	hospital, err := s.hospitals.GetByID(ctx, req.HospitalID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: hospital %d", domain.ErrNotFound, req.HospitalID)
		}
		slog.Error("hospital lookup failed", "hospital_id", req.HospitalID, "error", err)
		return nil, fmt.Errorf("%w: hospital lookup", domain.ErrInternal)
	}

	radiusKm := s.defaultRadiusKm
	if req.RadiusKm != nil {
		radiusKm = *req.RadiusKm
	}

	// Snapshot of eligible donors: donor role, exact blood-type match,
	// location present. Frozen for the duration of this call.
	snapshot, err := s.donors.ListEligible(ctx, req.BloodType)
	if err != nil {
		slog.Error("donor snapshot failed",
			"hospital_id", req.HospitalID, "blood_type", req.BloodType, "error", err)
		return nil, fmt.Errorf("%w: donor directory unavailable", domain.ErrInternal)
	}

	matches, total, err := s.runPipeline(hospital.Location, snapshot, radiusKm)
	if err != nil {
		slog.Error("matching pipeline failed",
			"hospital_id", req.HospitalID,
			"blood_type", req.BloodType,
			"radius_km", radiusKm,
			"candidates", len(snapshot),
			"error", err)
		return nil, err
	}

	result := &domain.AlertResult{
		Hospital:        *hospital,
		BloodTypeNeeded: req.BloodType,
		RadiusKm:        radiusKm,
		TotalMatched:    total,
		TopMatches:      matches,
	}

	metrics.AlertsCreated.WithLabelValues(req.BloodType).Inc()
	metrics.DonorsMatched.Observe(float64(total))

	s.publishEvent(ctx, result)
	return result, nil
}

// runPipeline isolates the pure stages behind a recover boundary: a
// malformed record or a misbehaving scorer must surface as an opaque
// internal error, never a partial result.
func (s *AlertService) runPipeline(origin domain.GeoPoint, snapshot []domain.Donor, radiusKm float64) (matches []domain.DonorMatch, total int, err error) {
	if s.scorer == nil {
		return nil, 0, fmt.Errorf("%w: no scorer configured", domain.ErrInternal)
	}
	defer func() {
		if r := recover(); r != nil {
			matches, total = nil, 0
			err = fmt.Errorf("%w: %v", domain.ErrInternal, r)
		}
	}()

	engine := matching.NewEngine(s.scorer, s.maxMatches)
	matches, total = engine.Match(origin, snapshot, radiusKm)
	return matches, total, nil
}

func (s *AlertService) publishEvent(ctx context.Context, result *domain.AlertResult) {
	if s.publisher == nil {
		return
	}

	event := &domain.AlertEvent{
		AlertID:      uuid.NewString(),
		HospitalID:   result.Hospital.ID,
		HospitalName: result.Hospital.Name,
		BloodType:    result.BloodTypeNeeded,
		RadiusKm:     result.RadiusKm,
		TotalMatched: result.TotalMatched,
		Matches:      make([]domain.AlertMatch, 0, len(result.TopMatches)),
		CreatedAt:    time.Now().UTC(),
	}
	for _, m := range result.TopMatches {
		event.Matches = append(event.Matches, domain.AlertMatch{
			DonorID:    m.Donor.ID,
			Name:       m.Donor.Name,
			DistanceKm: m.DistanceKm,
		})
	}

	if err := s.publisher.PublishAlertCreated(ctx, event); err != nil {
		slog.Warn("alert event publish failed", "alert_id", event.AlertID, "error", err)
	}
}
