package ports

import (
	"context"
	"parcel-service/internal/domain"
)

// Port: append-only storage for payment history records.
type PaymentHistoryStore interface {
	// Insert a record and return its generated identifier.
	Record(ctx context.Context, record *domain.PaymentRecord) (string, error)
	// Return records for one user, newest-first.
	ListByUser(ctx context.Context, email string) ([]*domain.PaymentRecord, error)
	// Return every record, newest-first.
	ListAll(ctx context.Context) ([]*domain.PaymentRecord, error)
}

// Read-through cache for payment history listings.
// An empty email addresses the unrestricted listing.
type PaymentHistoryCache interface {
	Get(ctx context.Context, email string) ([]*domain.PaymentRecord, bool, error)
	Put(ctx context.Context, email string, records []*domain.PaymentRecord) error
	Invalidate(ctx context.Context, emails ...string) error
}
