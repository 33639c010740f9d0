package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/SomeLazyDayz/Backend-15-11/internal/core/domain"
)

const donorColumns = `id, name, phone, email, password, role,
       COALESCE(address, ''), blood_type, lat, lng, last_donation, created_at`

// DonorRepo implements ports.DonorRepository with pgx.
type DonorRepo struct {
	db *DB
}

// NewDonorRepo creates a new DonorRepo.
func NewDonorRepo(db *DB) *DonorRepo {
	return &DonorRepo{db: db}
}

// Create inserts a donor and fills in the generated ID.
func (r *DonorRepo) Create(ctx context.Context, d *domain.Donor) error {
	var lat, lng *float64
	if d.Location != nil {
		lat, lng = &d.Location.Lat, &d.Location.Lng
	}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO users (name, phone, email, password, role, address, blood_type, lat, lng, last_donation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`, d.Name, d.Phone, d.Email, d.Password, d.Role, d.Address, d.BloodType,
		lat, lng, d.LastDonation).Scan(&d.ID, &d.CreatedAt)
	return err
}

// Update persists all mutable donor fields.
func (r *DonorRepo) Update(ctx context.Context, d *domain.Donor) error {
	var lat, lng *float64
	if d.Location != nil {
		lat, lng = &d.Location.Lat, &d.Location.Lng
	}
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE users
		SET name = $2, phone = $3, address = $4, blood_type = $5,
		    lat = $6, lng = $7, last_donation = $8
		WHERE id = $1
	`, d.ID, d.Name, d.Phone, d.Address, d.BloodType, lat, lng, d.LastDonation)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID returns a donor by primary key.
func (r *DonorRepo) GetByID(ctx context.Context, id int64) (*domain.Donor, error) {
	return r.scanOne(r.db.Pool.QueryRow(ctx,
		`SELECT `+donorColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail returns a donor by email, used for login.
func (r *DonorRepo) GetByEmail(ctx context.Context, email string) (*domain.Donor, error) {
	return r.scanOne(r.db.Pool.QueryRow(ctx,
		`SELECT `+donorColumns+` FROM users WHERE email = $1`, email))
}

// ExistsByEmailOrPhone reports whether a user already claims the email or phone.
func (r *DonorRepo) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR phone = $2)`,
		email, phone).Scan(&exists)
	return exists, err
}

// List returns all users ordered by ID.
func (r *DonorRepo) List(ctx context.Context) ([]domain.Donor, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+donorColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ListEligible returns donors of the given blood type that have a known
// location. The ranking pipeline assumes every donor it receives already
// passed this filter.
func (r *DonorRepo) ListEligible(ctx context.Context, bloodType string) ([]domain.Donor, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+donorColumns+`
		FROM users
		WHERE role = $1 AND blood_type = $2 AND lat IS NOT NULL AND lng IS NOT NULL
		ORDER BY id
	`, domain.RoleDonor, bloodType)
	if err != nil {
		return nil, fmt.Errorf("list eligible donors: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *DonorRepo) scanOne(row pgx.Row) (*domain.Donor, error) {
	d, err := scanDonor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DonorRepo) scanAll(rows pgx.Rows) ([]domain.Donor, error) {
	var donors []domain.Donor
	for rows.Next() {
		d, err := scanDonor(rows)
		if err != nil {
			return nil, err
		}
		donors = append(donors, *d)
	}
	return donors, rows.Err()
}

func scanDonor(row pgx.Row) (*domain.Donor, error) {
	var d domain.Donor
	var lat, lng *float64
	if err := row.Scan(
		&d.ID, &d.Name, &d.Phone, &d.Email, &d.Password, &d.Role,
		&d.Address, &d.BloodType, &lat, &lng, &d.LastDonation, &d.CreatedAt,
	); err != nil {
		return nil, err
	}
	if lat != nil && lng != nil {
		d.Location = &domain.GeoPoint{Lat: *lat, Lng: *lng}
	}
	return &d, nil
}
