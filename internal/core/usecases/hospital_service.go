package usecases

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/SomeLazyDayz/Backend-15-11/internal/core/domain"
	"github.com/SomeLazyDayz/Backend-15-11/internal/core/ports"
	"github.com/SomeLazyDayz/Backend-15-11/internal/pkg/metrics"
)

// HospitalService handles hospital lookups.
type HospitalService struct {
	hospitals ports.HospitalRepository
	cache     ports.CacheService
}

// NewHospitalService creates a new HospitalService.
func NewHospitalService(hospitals ports.HospitalRepository, cache ports.CacheService) *HospitalService {
	return &HospitalService{hospitals: hospitals, cache: cache}
}

// GetByID returns a single hospital.
func (s *HospitalService) GetByID(ctx context.Context, id int64) (*domain.Hospital, error) {
	cacheKey := "hospitals:id:" + strconv.FormatInt(id, 10)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var h domain.Hospital
			if data != nil && json.Unmarshal(data, &h) == nil {
				metrics.CacheHits.WithLabelValues("hospital").Inc()
				return &h, nil
			}
			metrics.CacheMisses.WithLabelValues("hospital").Inc()
		}
	}

	hospital, err := s.hospitals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Hospitals rarely change; 10 minutes is safe.
	if s.cache != nil {
		if data, err := json.Marshal(hospital); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}
	return hospital, nil
}

// List returns all hospitals.
func (s *HospitalService) List(ctx context.Context) ([]domain.Hospital, error) {
	return s.hospitals.List(ctx)
}
