package usecases

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SomeLazyDayz/Backend-15-11/internal/core/domain"
	"github.com/SomeLazyDayz/Backend-15-11/internal/core/ports"
	"github.com/SomeLazyDayz/Backend-15-11/internal/pkg/metrics"
)

const dateLayout = "2006-01-02"

// geocodeCacheTTL keeps resolved addresses for a day; addresses are stable
// and re-registrations from the same street are common.
const geocodeCacheTTL = 86400

// DonorRegistration carries the registration payload.
type DonorRegistration struct {
	FullName         string `json:"fullName"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Password         string `json:"password"`
	Address          string `json:"address"`
	BloodType        string `json:"bloodType"`
	LastDonationDate string `json:"lastDonationDate,omitempty"`
}

// DonorUpdate carries a partial profile update; nil fields are untouched.
type DonorUpdate struct {
	Name         *string `json:"name,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Address      *string `json:"address,omitempty"`
	BloodType    *string `json:"blood_type,omitempty"`
	LastDonation *string `json:"last_donation,omitempty"` // "" clears the date
}

// DonorService handles donor registration, profile updates, and lookups.
// Geocoding fails soft throughout: a donor without coordinates is stored and
// can fix their address later; they just stay invisible to matching.
type DonorService struct {
	donors    ports.DonorRepository
	geocoder  ports.Geocoder
	cache     ports.CacheService     // optional
	publisher ports.EventPublisher   // optional
}

// NewDonorService creates a new DonorService. cache and publisher may be nil.
func NewDonorService(donors ports.DonorRepository, geocoder ports.Geocoder, cache ports.CacheService, publisher ports.EventPublisher) *DonorService {
	return &DonorService{donors: donors, geocoder: geocoder, cache: cache, publisher: publisher}
}

// Register validates and stores a new donor. The second return value reports
// whether the address resolved to coordinates; callers surface a warning when
// it did not.
func (s *DonorService) Register(ctx context.Context, in DonorRegistration) (*domain.Donor, bool, error) {
	switch {
	case in.FullName == "":
		return nil, false, fmt.Errorf("%w: fullName is required", domain.ErrValidation)
	case in.Email == "":
		return nil, false, fmt.Errorf("%w: email is required", domain.ErrValidation)
	case in.Phone == "":
		return nil, false, fmt.Errorf("%w: phone is required", domain.ErrValidation)
	case in.Password == "":
		return nil, false, fmt.Errorf("%w: password is required", domain.ErrValidation)
	case in.Address == "":
		return nil, false, fmt.Errorf("%w: address is required", domain.ErrValidation)
	case in.BloodType == "":
		return nil, false, fmt.Errorf("%w: bloodType is required", domain.ErrValidation)
	}
	if !domain.BloodTypes[in.BloodType] {
		return nil, false, fmt.Errorf("%w: unknown blood type %q", domain.ErrValidation, in.BloodType)
	}

	var lastDonation *time.Time
	if in.LastDonationDate != "" {
		t, err := time.Parse(dateLayout, in.LastDonationDate)
		if err != nil {
			return nil, false, fmt.Errorf("%w: lastDonationDate must be YYYY-MM-DD", domain.ErrValidation)
		}
		lastDonation = &t
	}

	exists, err := s.donors.ExistsByEmailOrPhone(ctx, in.Email, in.Phone)
	if err != nil {
		return nil, false, fmt.Errorf("check duplicates: %w", err)
	}
	if exists {
		return nil, false, fmt.Errorf("%w: email or phone already registered", domain.ErrConflict)
	}

	location := s.resolveAddress(ctx, in.Address)

	donor := &domain.Donor{
		Name:         in.FullName,
		Email:        in.Email,
		Phone:        in.Phone,
		Password:     in.Password,
		Role:         domain.RoleDonor,
		Address:      in.Address,
		BloodType:    in.BloodType,
		Location:     location,
		LastDonation: lastDonation,
	}
	if err := s.donors.Create(ctx, donor); err != nil {
		return nil, false, fmt.Errorf("create donor: %w", err)
	}
	metrics.DonorsRegistered.Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishDonorRegistered(ctx, donor); err != nil {
			slog.Warn("donor event publish failed", "donor_id", donor.ID, "error", err)
		}
	}

	return donor, location != nil, nil
}

// Update applies a partial profile update. A changed address re-derives the
// coordinates; an unresolvable new address clears them.
func (s *DonorService) Update(ctx context.Context, id int64, in DonorUpdate) (*domain.Donor, error) {
	donor, err := s.donors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		donor.Name = *in.Name
	}
	if in.Phone != nil {
		donor.Phone = *in.Phone
	}
	if in.BloodType != nil {
		if !domain.BloodTypes[*in.BloodType] {
			return nil, fmt.Errorf("%w: unknown blood type %q", domain.ErrValidation, *in.BloodType)
		}
		donor.BloodType = *in.BloodType
	}
	if in.LastDonation != nil {
		if *in.LastDonation == "" {
			donor.LastDonation = nil
		} else {
			t, err := time.Parse(dateLayout, *in.LastDonation)
			if err != nil {
				return nil, fmt.Errorf("%w: last_donation must be YYYY-MM-DD", domain.ErrValidation)
			}
			donor.LastDonation = &t
		}
	}

	if in.Address != nil && *in.Address != donor.Address {
		donor.Address = *in.Address
		donor.Location = s.resolveAddress(ctx, *in.Address)
	}

	if err := s.donors.Update(ctx, donor); err != nil {
		return nil, fmt.Errorf("update donor: %w", err)
	}
	return donor, nil
}

// Login checks credentials and returns the donor on success.
func (s *DonorService) Login(ctx context.Context, email, password string) (*domain.Donor, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}
	donor, err := s.donors.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: bad email or password", domain.ErrUnauthorized)
	}
	if subtle.ConstantTimeCompare([]byte(donor.Password), []byte(password)) != 1 {
		return nil, fmt.Errorf("%w: bad email or password", domain.ErrUnauthorized)
	}
	return donor, nil
}

// GetByID returns a single donor.
func (s *DonorService) GetByID(ctx context.Context, id int64) (*domain.Donor, error) {
	return s.donors.GetByID(ctx, id)
}

// List returns all donors.
func (s *DonorService) List(ctx context.Context) ([]domain.Donor, error) {
	return s.donors.List(ctx)
}

// resolveAddress geocodes with a read-through cache. Every failure path
// returns nil: registration must succeed even when the geocoder is down.
func (s *DonorService) resolveAddress(ctx context.Context, address string) *domain.GeoPoint {
	cacheKey := "geocode:" + address

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var p domain.GeoPoint
			if data != nil && json.Unmarshal(data, &p) == nil {
				metrics.CacheHits.WithLabelValues("geocode").Inc()
				metrics.GeocodeLookups.WithLabelValues("cache_hit").Inc()
				return &p
			}
			metrics.CacheMisses.WithLabelValues("geocode").Inc()
		}
	}

	if s.geocoder == nil {
		metrics.GeocodeLookups.WithLabelValues("no_geocoder").Inc()
		return nil
	}

	point, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		slog.Warn("geocoding failed", "address", address, "error", err)
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
		return nil
	}
	if point == nil {
		slog.Info("address did not resolve", "address", address)
		metrics.GeocodeLookups.WithLabelValues("no_result").Inc()
		return nil
	}
	metrics.GeocodeLookups.WithLabelValues("resolved").Inc()

	if s.cache != nil {
		if data, err := json.Marshal(point); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, geocodeCacheTTL)
		}
	}
	return point
}
