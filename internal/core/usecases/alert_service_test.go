package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/SomeLazyDayz/Backend-15-11/internal/core/domain"
	"github.com/SomeLazyDayz/Backend-15-11/internal/core/matching"
	"github.com/SomeLazyDayz/Backend-15-11/internal/core/usecases"
)

// --- Mock repositories ---

type mockHospitalRepo struct {
	getByIDFn func(ctx context.Context, id int64) (*domain.Hospital, error)
	listFn    func(ctx context.Context) ([]domain.Hospital, error)
}

func (m *mockHospitalRepo) GetByID(ctx context.Context, id int64) (*domain.Hospital, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockHospitalRepo) List(ctx context.Context) ([]domain.Hospital, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type mockDonorRepo struct {
	listEligibleFn func(ctx context.Context, bloodType string) ([]domain.Donor, error)
	createFn       func(ctx context.Context, d *domain.Donor) error
	updateFn       func(ctx context.Context, d *domain.Donor) error
	getByIDFn      func(ctx context.Context, id int64) (*domain.Donor, error)
	getByEmailFn   func(ctx context.Context, email string) (*domain.Donor, error)
	existsFn       func(ctx context.Context, email, phone string) (bool, error)
	listFn         func(ctx context.Context) ([]domain.Donor, error)
}

func (m *mockDonorRepo) Create(ctx context.Context, d *domain.Donor) error {
	if m.createFn != nil {
		return m.createFn(ctx, d)
	}
	return nil
}
func (m *mockDonorRepo) Update(ctx context.Context, d *domain.Donor) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, d)
	}
	return nil
}
func (m *mockDonorRepo) GetByID(ctx context.Context, id int64) (*domain.Donor, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockDonorRepo) GetByEmail(ctx context.Context, email string) (*domain.Donor, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, domain.ErrNotFound
}
func (m *mockDonorRepo) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, email, phone)
	}
	return false, nil
}
func (m *mockDonorRepo) List(ctx context.Context) ([]domain.Donor, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockDonorRepo) ListEligible(ctx context.Context, bloodType string) ([]domain.Donor, error) {
	if m.listEligibleFn != nil {
		return m.listEligibleFn(ctx, bloodType)
	}
	return nil, nil
}

// panicScorer simulates a misbehaving policy.
type panicScorer struct{}

func (panicScorer) Score(domain.Donor, float64) float64 { panic("scorer blew up") }

// --- Fixtures ---

var testHospital = domain.Hospital{
	ID:       1,
	Name:     "Bach Mai Hospital",
	Location: domain.GeoPoint{Lat: 21.0006, Lng: 105.8400},
}

func eligibleDonors(bloodType string) []domain.Donor {
	return []domain.Donor{
		{ID: 1, Name: "Anh", Role: domain.RoleDonor, BloodType: bloodType,
			Location: &domain.GeoPoint{Lat: 21.001, Lng: 105.841}},
		{ID: 2, Name: "Binh", Role: domain.RoleDonor, BloodType: bloodType,
			Location: &domain.GeoPoint{Lat: 21.010, Lng: 105.850}},
		{ID: 3, Name: "Chi", Role: domain.RoleDonor, BloodType: bloodType,
			Location: &domain.GeoPoint{Lat: 10.823, Lng: 106.630}}, // ~1100 km away
	}
}

func newAlertService(hr *mockHospitalRepo, dr *mockDonorRepo) *usecases.AlertService {
	return usecases.NewAlertService(hr, dr, matching.NewRecencyScorer(90), nil, 10, 50)
}

// --- Tests ---

func TestAlertService_MissingBloodType(t *testing.T) {
	storeTouched := false
	hr := &mockHospitalRepo{getByIDFn: func(ctx context.Context, id int64) (*domain.Hospital, error) {
		storeTouched = true
		return &testHospital, nil
	}}
	svc := newAlertService(hr, &mockDonorRepo{})

	_, err := svc.CreateAlert(context.Background(), domain.AlertRequest{HospitalID: 1})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if storeTouched {
		t.Error("validation must happen before any store access")
	}
}

func TestAlertService_MissingHospitalID(t *testing.T) {
	svc := newAlertService(&mockHospitalRepo{}, &mockDonorRepo{})
	_, err := svc.CreateAlert(context.Background(), domain.AlertRequest{BloodType: "O+"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestAlertService_HospitalNotFound(t *testing.T) {
	pipelineRan := false
	dr := &mockDonorRepo{listEligibleFn: func(ctx context.Context, bt string) ([]domain.Donor, error) {
		pipelineRan = true
		return nil, nil
	}}
	svc := newAlertService(&mockHospitalRepo{}, dr)

	_, err := svc.CreateAlert(context.Background(), domain.AlertRequest{HospitalID: 99, BloodType: "O+"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if pipelineRan {
		t.Error("pipeline must not run when the hospital does not resolve")
	}
}

func TestAlertService_Success(t *testing.T) {
	hr := &mockHospitalRepo{getByIDFn: func(ctx context.Context, id int64) (*domain.Hospital, error) {
		return &testHospital, nil
	}}
	var requestedType string
	dr := &mockDonorRepo{listEligibleFn: func(ctx context.Context, bt string) ([]domain.Donor, error) {
		requestedType = bt
		return eligibleDonors(bt), nil
	}}
	svc := newAlertService(hr, dr)

	res, err := svc.CreateAlert(context.Background(), domain.AlertRequest{HospitalID: 1, BloodType: "O+"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requestedType != "O+" {
		t.Errorf("snapshot requested for %q, want O+", requestedType)
	}
	if res.RadiusKm != 10 {
		t.Errorf("radius defaulted to %v, want 10", res.RadiusKm)
	}
	if res.TotalMatched != 2 {
		t.Errorf("total matched = %d, want 2 (the far donor is out of radius)", res.TotalMatched)
	}
	for _, m := range res.TopMatches {
		if m.DistanceKm > res.RadiusKm {
			t.Errorf("match %d at %.3f km exceeds radius", m.Donor.ID, m.DistanceKm)
		}
	}
	seen := map[int64]bool{}
	for _, m := range res.TopMatches {
		if seen[m.Donor.ID] {
			t.Errorf("duplicate donor %d in shortlist", m.Donor.ID)
		}
		seen[m.Donor.ID] = true
	}
}

func TestAlertService_EmptyResultIsSuccess(t *testing.T) {
	hr := &mockHospitalRepo{getByIDFn: func(ctx context.Context, id int64) (*domain.Hospital, error) {
		h := domain.Hospital{ID: 1, Name: "Origin", Location: domain.GeoPoint{Lat: 0, Lng: 0}}
		return &h, nil
	}}
	dr := &mockDonorRepo{listEligibleFn: func(ctx context.Context, bt string) ([]domain.Donor, error) {
		return []domain.Donor{{ID: 1, Role: domain.RoleDonor, BloodType: bt,
			Location: &domain.GeoPoint{Lat: 10, Lng: 10}}}, nil
	}}
	svc := newAlertService(hr, dr)

	res, err := svc.CreateAlert(context.Background(), domain.AlertRequest{HospitalID: 1, BloodType: "AB-"})
	if err != nil {
		t.Fatalf("empty shortlist must be a success, got %v", err)
	}
	if res.TotalMatched != 0 || len(res.TopMatches) != 0 {
		t.Errorf("got total=%d matches=%d, want 0/0", res.TotalMatched, len(res.TopMatches))
	}
}

func TestAlertService_ExplicitZeroRadius(t *testing.T) {
	hr := &mockHospitalRepo{getByIDFn: func(ctx context.Context, id int64) (*domain.Hospital, error) {
		return &testHospital, nil
	}}
	dr := &mockDonorRepo{listEligibleFn: func(ctx context.Context, bt string) ([]domain.Donor, error) {
		return eligibleDonors(bt), nil
	}}
	svc := newAlertService(hr, dr)

	zero := 0.0
	res, err := svc.CreateAlert(context.Background(),
		domain.AlertRequest{HospitalID: 1, BloodType: "O+", RadiusKm: &zero})
	if err != nil {
		t.Fatalf("non-positive radius must not be an error, got %v", err)
	}
	if res.TotalMatched != 0 {
		t.Errorf("explicit radius 0 matched %d donors, want 0", res.TotalMatched)
	}
	if res.RadiusKm != 0 {
		t.Errorf("explicit radius 0 was replaced by %v", res.RadiusKm)
	}
}

func TestAlertService_SnapshotFailureIsInternal(t *testing.T) {
	hr := &mockHospitalRepo{getByIDFn: func(ctx context.Context, id int64) (*domain.Hospital, error) {
		return &testHospital, nil
	}}
	dr := &mockDonorRepo{listEligibleFn: func(ctx context.Context, bt string) ([]domain.Donor, error) {
		return nil, fmt.Errorf("connection refused")
	}}
	svc := newAlertService(hr, dr)

	_, err := svc.CreateAlert(context.Background(), domain.AlertRequest{HospitalID: 1, BloodType: "O+"})
	if !errors.Is(err, domain.ErrInternal) {
		t.Fatalf("err = %v, want ErrInternal", err)
	}
}

func TestAlertService_NoScorerConfigured(t *testing.T) {
	hr := &mockHospitalRepo{getByIDFn: func(ctx context.Context, id int64) (*domain.Hospital, error) {
		return &testHospital, nil
	}}
	dr := &mockDonorRepo{listEligibleFn: func(ctx context.Context, bt string) ([]domain.Donor, error) {
		return eligibleDonors(bt), nil
	}}
	svc := usecases.NewAlertService(hr, dr, nil, nil, 10, 50)

	_, err := svc.CreateAlert(context.Background(), domain.AlertRequest{HospitalID: 1, BloodType: "O+"})
	if !errors.Is(err, domain.ErrInternal) {
		t.Fatalf("err = %v, want ErrInternal when no scorer is configured", err)
	}
}

func TestAlertService_ScorerPanicIsContained(t *testing.T) {
	hr := &mockHospitalRepo{getByIDFn: func(ctx context.Context, id int64) (*domain.Hospital, error) {
		return &testHospital, nil
	}}
	dr := &mockDonorRepo{listEligibleFn: func(ctx context.Context, bt string) ([]domain.Donor, error) {
		return eligibleDonors(bt), nil
	}}
	svc := usecases.NewAlertService(hr, dr, panicScorer{}, nil, 10, 50)

	res, err := svc.CreateAlert(context.Background(), domain.AlertRequest{HospitalID: 1, BloodType: "O+"})
	if !errors.Is(err, domain.ErrInternal) {
		t.Fatalf("err = %v, want ErrInternal from contained panic", err)
	}
	if res != nil {
		t.Error("no partial result may leak to the caller")
	}
}
