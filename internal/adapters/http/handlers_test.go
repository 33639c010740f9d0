package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/SomeLazyDayz/Backend-15-11/internal/adapters/http"
	"github.com/SomeLazyDayz/Backend-15-11/internal/core/domain"
	"github.com/SomeLazyDayz/Backend-15-11/internal/core/matching"
	"github.com/SomeLazyDayz/Backend-15-11/internal/core/usecases"
)

// ---- Mock repositories ----

type mockDonorRepo struct {
	createFn       func(ctx context.Context, d *domain.Donor) error
	updateFn       func(ctx context.Context, d *domain.Donor) error
	getByIDFn      func(ctx context.Context, id int64) (*domain.Donor, error)
	getByEmailFn   func(ctx context.Context, email string) (*domain.Donor, error)
	existsFn       func(ctx context.Context, email, phone string) (bool, error)
	listFn         func(ctx context.Context) ([]domain.Donor, error)
	listEligibleFn func(ctx context.Context, bloodType string) ([]domain.Donor, error)
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

type mockGeocoder struct {
	geocodeFn func(ctx context.Context, address string) (*domain.GeoPoint, error)
}

func (m *mockGeocoder) Geocode(ctx context.Context, address string) (*domain.GeoPoint, error) {
	if m.geocodeFn != nil {
		return m.geocodeFn(ctx, address)
	}
	return nil, nil
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	donorRepo := &mockDonorRepo{}
	hospitalRepo := &mockHospitalRepo{}
	scorer := matching.NewRecencyScorer(matching.DefaultCooldownDays)
	d := &handler.Dependencies{
		Donors:    usecases.NewDonorService(donorRepo, &mockGeocoder{}, nil, nil),
		Hospitals: usecases.NewHospitalService(hospitalRepo, nil),
		Alerts: usecases.NewAlertService(hospitalRepo, donorRepo, scorer, nil,
			usecases.DefaultRadiusKm, matching.DefaultMaxMatches),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// ---- Alert handler tests ----

func testHospitalRepo() *mockHospitalRepo {
	return &mockHospitalRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.Hospital, error) {
			if id != 1 {
				return nil, domain.ErrNotFound
			}
			return &domain.Hospital{
				ID: 1, Name: "Cho Ray Hospital",
				Location: domain.GeoPoint{Lat: 10.7554, Lng: 106.6607},
			}, nil
		},
	}
}

func nearbyDonorRepo() *mockDonorRepo {
	loc := func(lat, lng float64) *domain.GeoPoint { return &domain.GeoPoint{Lat: lat, Lng: lng} }
	return &mockDonorRepo{
		listEligibleFn: func(ctx context.Context, bloodType string) ([]domain.Donor, error) {
			return []domain.Donor{
				{ID: 1, Name: "Tran Thi B", Role: domain.RoleDonor, BloodType: bloodType, Location: loc(10.756, 106.661)},
				{ID: 2, Name: "Le Van C", Role: domain.RoleDonor, BloodType: bloodType, Location: loc(21.0285, 105.8542)},
			}, nil
		},
	}
}

func alertDeps() *handler.Dependencies {
	hospitalRepo := testHospitalRepo()
	donorRepo := nearbyDonorRepo()
	scorer := matching.NewRecencyScorer(matching.DefaultCooldownDays)
	return makeDeps(func(d *handler.Dependencies) {
		d.Hospitals = usecases.NewHospitalService(hospitalRepo, nil)
		d.Alerts = usecases.NewAlertService(hospitalRepo, donorRepo, scorer, nil,
			usecases.DefaultRadiusKm, matching.DefaultMaxMatches)
	})
}

func TestCreateAlert_MissingBloodType(t *testing.T) {
	app := setupApp(alertDeps())

	req := httptest.NewRequest("POST", "/v1/alerts", strings.NewReader(`{"hospital_id":1}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var apiErr handler.APIError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
		t.Fatal(err)
	}
	if apiErr.Code != "bad_request" {
		t.Errorf("code = %q, want bad_request", apiErr.Code)
	}
}

func TestCreateAlert_HospitalNotFound(t *testing.T) {
	app := setupApp(alertDeps())

	req := httptest.NewRequest("POST", "/v1/alerts",
		strings.NewReader(`{"hospital_id":999,"blood_type":"O+"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateAlert_Success(t *testing.T) {
	app := setupApp(alertDeps())

	req := httptest.NewRequest("POST", "/v1/alerts",
		strings.NewReader(`{"hospital_id":1,"blood_type":"O+"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result domain.AlertResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.BloodTypeNeeded != "O+" {
		t.Errorf("blood_type_needed = %q, want O+", result.BloodTypeNeeded)
	}
	if result.RadiusKm != usecases.DefaultRadiusKm {
		t.Errorf("radius_km = %v, want default %v", result.RadiusKm, usecases.DefaultRadiusKm)
	}
	// Only the donor near the hospital survives the radius cut.
	if result.TotalMatched != 1 {
		t.Errorf("total_matched = %d, want 1", result.TotalMatched)
	}
	if len(result.TopMatches) != 1 || result.TopMatches[0].Donor.ID != 1 {
		t.Errorf("top_matches = %+v, want the nearby donor", result.TopMatches)
	}
}

func TestCreateAlert_LegacyAliasCarriesDeprecation(t *testing.T) {
	app := setupApp(alertDeps())

	req := httptest.NewRequest("POST", "/create_alert",
		strings.NewReader(`{"hospital_id":1,"blood_type":"O+"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Deprecation") != "true" {
		t.Error("legacy alias must carry a Deprecation header")
	}
	if resp.Header.Get("Sunset") == "" {
		t.Error("legacy alias must carry a Sunset header")
	}
}

func TestUpdateDonor_LegacyPatchAlias(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Donors = usecases.NewDonorService(
			&mockDonorRepo{getByIDFn: func(ctx context.Context, id int64) (*domain.Donor, error) {
				return &domain.Donor{ID: id, Name: "Nguyen Van A", Role: domain.RoleDonor,
					BloodType: "O+"}, nil
			}},
			&mockGeocoder{}, nil, nil)
	})
	app := setupApp(deps)

	// The original flat API accepted both PUT and PATCH on /users/<id>.
	for _, method := range []string{"PUT", "PATCH"} {
		req := httptest.NewRequest(method, "/users/5",
			strings.NewReader(`{"phone":"0907654321"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != 200 {
			t.Fatalf("%s /users/5: expected 200, got %d", method, resp.StatusCode)
		}
		if resp.Header.Get("Deprecation") != "true" {
			t.Errorf("%s /users/5 must carry a Deprecation header", method)
		}
	}
}

// ---- Donor handler tests ----

func registrationBody() string {
	return `{"fullName":"Nguyen Van A","email":"a@example.com","phone":"0901234567",
		"password":"secret","address":"1 Trang Thi, Hanoi","bloodType":"O+"}`
}

func TestRegisterDonor_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Donors = usecases.NewDonorService(
			&mockDonorRepo{createFn: func(ctx context.Context, donor *domain.Donor) error {
				donor.ID = 11
				donor.CreatedAt = time.Now()
				return nil
			}},
			&mockGeocoder{geocodeFn: func(ctx context.Context, addr string) (*domain.GeoPoint, error) {
				return &domain.GeoPoint{Lat: 21.03, Lng: 105.85}, nil
			}},
			nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/v1/donors", strings.NewReader(registrationBody()))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var result struct {
		Message string       `json:"message"`
		Warning string       `json:"warning"`
		Donor   domain.Donor `json:"donor"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Donor.ID != 11 {
		t.Errorf("donor id = %d, want 11", result.Donor.ID)
	}
	if result.Warning != "" {
		t.Errorf("unexpected warning: %q", result.Warning)
	}
}

func TestRegisterDonor_GeocodeFailureWarns(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Donors = usecases.NewDonorService(
			&mockDonorRepo{createFn: func(ctx context.Context, donor *domain.Donor) error {
				donor.ID = 12
				return nil
			}},
			&mockGeocoder{geocodeFn: func(ctx context.Context, addr string) (*domain.GeoPoint, error) {
				return nil, fmt.Errorf("quota exceeded")
			}},
			nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/v1/donors", strings.NewReader(registrationBody()))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("geocoder failure must not block registration, got %d", resp.StatusCode)
	}

	var result struct {
		Warning string `json:"warning"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Warning == "" {
		t.Error("expected a warning about the unresolved address")
	}
}

func TestRegisterDonor_MissingFields(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("POST", "/v1/donors",
		strings.NewReader(`{"fullName":"No Email"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Donors = usecases.NewDonorService(
			&mockDonorRepo{getByEmailFn: func(ctx context.Context, email string) (*domain.Donor, error) {
				return &domain.Donor{ID: 1, Email: email, Password: "right"}, nil
			}},
			&mockGeocoder{}, nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/v1/auth/login",
		strings.NewReader(`{"email":"a@example.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestListDonors_Pagination(t *testing.T) {
	donors := make([]domain.Donor, 7)
	for i := range donors {
		donors[i] = domain.Donor{ID: int64(i + 1), Name: fmt.Sprintf("Donor %d", i+1), BloodType: "A+"}
	}
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Donors = usecases.NewDonorService(
			&mockDonorRepo{listFn: func(ctx context.Context) ([]domain.Donor, error) { return donors, nil }},
			&mockGeocoder{}, nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/donors?offset=5&limit=5", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Donor `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 7 {
		t.Errorf("total = %d, want 7", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("page size = %d, want 2", len(result.Data))
	}
}

// ---- Hospital handler tests ----

func TestListHospitals_Pagination(t *testing.T) {
	hospitals := make([]domain.Hospital, 5)
	for i := range hospitals {
		hospitals[i] = domain.Hospital{ID: int64(i + 1), Name: fmt.Sprintf("Hospital %d", i+1),
			Location: domain.GeoPoint{Lat: 10.75, Lng: 106.66}}
	}
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Hospitals = usecases.NewHospitalService(
			&mockHospitalRepo{listFn: func(ctx context.Context) ([]domain.Hospital, error) {
				return hospitals, nil
			}}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/hospitals?offset=3&limit=3", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Link") == "" {
		t.Error("paginated listing must carry Link headers")
	}

	var result struct {
		Data       []domain.Hospital `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 5 {
		t.Errorf("total = %d, want 5", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("page size = %d, want 2", len(result.Data))
	}
}

func TestGetHospital_Success(t *testing.T) {
	app := setupApp(alertDeps())

	req := httptest.NewRequest("GET", "/v1/hospitals/1", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var h domain.Hospital
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		t.Fatal(err)
	}
	if h.Name != "Cho Ray Hospital" {
		t.Errorf("name = %q, want Cho Ray Hospital", h.Name)
	}
}

func TestGetHospital_NotFound(t *testing.T) {
	app := setupApp(alertDeps())

	req := httptest.NewRequest("GET", "/v1/hospitals/404", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
