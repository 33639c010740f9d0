package domain

import "errors"

// Sentinel errors that the HTTP layer maps onto status categories.
// Usecases wrap them with fmt.Errorf("%w: ...") so callers keep the detail
// while errors.Is still matches the category.
var (
	// ErrValidation marks a client-input error; the caller can fix and resubmit.
	ErrValidation = errors.New("invalid request")

	// ErrNotFound marks a referenced record that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a uniqueness violation (duplicate email/phone).
	ErrConflict = errors.New("already exists")

	// ErrUnauthorized marks failed credential checks.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternal marks an unexpected fault inside the matching pipeline.
	// Details are logged server-side and never exposed to the caller.
	ErrInternal = errors.New("internal processing error")
)
