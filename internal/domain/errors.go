package domain

import "errors"

var (
	// ErrValidation marks input rejected before it reaches a store or provider.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an identifier does not resolve to a stored entity.
	// Identifiers in a format the backend cannot parse are reported the same way.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyPaid is returned when a paid parcel is marked paid again.
	ErrAlreadyPaid = errors.New("already paid")
)

// ValidationError carries a client-facing message and matches ErrValidation.
type ValidationError struct {
	Msg string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Msg: msg}
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
