package ports

import (
	"context"
	"parcel-service/internal/domain"
	"time"
)

// Optional constraints applied when listing parcels.
type ParcelFilter struct {
	Email string
}

// Outcome of a field merge against one parcel.
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
}

// Port: a boundary for persisting Parcel documents.
type ParcelStore interface {
	// Return parcels newest-first, optionally restricted to one user_email.
	List(ctx context.Context, filter ParcelFilter) ([]*domain.Parcel, error)
	// Return one parcel or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Parcel, error)
	// Insert a parcel and return its generated identifier.
	Create(ctx context.Context, parcel *domain.Parcel) (string, error)
	// Merge fields into an existing parcel. Unknown ids match nothing.
	Update(ctx context.Context, id string, fields map[string]any) (UpdateResult, error)
	// Remove a parcel and report how many documents were removed.
	Delete(ctx context.Context, id string) (int64, error)
	// Transition unpaid -> paid. Returns domain.ErrNotFound or domain.ErrAlreadyPaid.
	MarkPaid(ctx context.Context, id string, at time.Time) (UpdateResult, error)
}
