package ports

import (
	"context"

	"github.com/SomeLazyDayz/Backend-15-11/internal/core/domain"
)

// DonorRepository persists donors.
type DonorRepository interface {
	Create(ctx context.Context, donor *domain.Donor) error
	Update(ctx context.Context, donor *domain.Donor) error
	GetByID(ctx context.Context, id int64) (*domain.Donor, error)
	GetByEmail(ctx context.Context, email string) (*domain.Donor, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	List(ctx context.Context) ([]domain.Donor, error)

	// ListEligible returns the directory snapshot for one matching call:
	// donors with the donor role, an exact blood-type match, and a resolved
	// location. Every returned donor is guaranteed to carry coordinates.
	ListEligible(ctx context.Context, bloodType string) ([]domain.Donor, error)
}

// HospitalRepository persists hospitals.
type HospitalRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Hospital, error)
	List(ctx context.Context) ([]domain.Hospital, error)
}
