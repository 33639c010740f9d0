package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/SomeLazyDayz/Backend-15-11/internal/core/domain"
)

// HospitalRepo implements ports.HospitalRepository with pgx.
type HospitalRepo struct {
	db *DB
}

// NewHospitalRepo creates a new HospitalRepo.
func NewHospitalRepo(db *DB) *HospitalRepo {
	return &HospitalRepo{db: db}
}

// GetByID returns a hospital by primary key.
func (r *HospitalRepo) GetByID(ctx context.Context, id int64) (*domain.Hospital, error) {
	var h domain.Hospital
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, lat, lng, created_at FROM hospitals WHERE id = $1
	`, id).Scan(&h.ID, &h.Name, &h.Location.Lat, &h.Location.Lng, &h.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// List returns all hospitals ordered by name.
func (r *HospitalRepo) List(ctx context.Context) ([]domain.Hospital, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, name, lat, lng, created_at FROM hospitals ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hospitals []domain.Hospital
	for rows.Next() {
		var h domain.Hospital
		if err := rows.Scan(&h.ID, &h.Name, &h.Location.Lat, &h.Location.Lng, &h.CreatedAt); err != nil {
			return nil, err
		}
		hospitals = append(hospitals, h)
	}
	return hospitals, rows.Err()
}
