package repositories

import (
	"context"
	"fmt"
	"maps"
	"parcel-service/internal/domain"
	"parcel-service/internal/ports"
	"reflect"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps parcels and payment history in process memory.
// It issues ObjectID-format identifiers so clients see the same id shape as the
// Mongo backend. Used for local runs and tests; nothing survives a restart.
type MemoryStore struct {
	mu       sync.Mutex
	parcels  []*domain.Parcel
	payments []*domain.PaymentRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) List(ctx context.Context, filter ports.ParcelFilter) ([]*domain.Parcel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.Parcel, 0, len(m.parcels))
	for i := len(m.parcels) - 1; i >= 0; i-- {
		p := m.parcels[i]
		if filter.Email != "" && p.UserEmail != filter.Email {
			continue
		}
		out = append(out, cloneParcel(p))
	}

	return out, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*domain.Parcel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, err := m.indexOf(id)
	if err != nil {
		return nil, fmt.Errorf("get parcel: %w", err)
	}

	return cloneParcel(m.parcels[i]), nil
}

func (m *MemoryStore) Create(ctx context.Context, parcel *domain.Parcel) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := cloneParcel(parcel)
	p.ID = primitive.NewObjectID().Hex()
	m.parcels = append(m.parcels, p)

	return p.ID, nil
}

func (m *MemoryStore) Update(ctx context.Context, id string, fields map[string]any) (ports.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, err := m.indexOf(id)
	if err != nil {
		return ports.UpdateResult{}, nil
	}

	current := m.parcels[i].Fields()
	merged := maps.Clone(current)
	for k, v := range setFields(fields) {
		merged[k] = v
	}

	// Matches the document store: a $set that leaves every value as it was modifies nothing.
	if reflect.DeepEqual(current, merged) {
		return ports.UpdateResult{MatchedCount: 1}, nil
	}

	merged[domain.FieldID] = m.parcels[i].ID
	m.parcels[i] = domain.ParcelFromFields(merged)

	return ports.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, err := m.indexOf(id)
	if err != nil {
		return 0, nil
	}

	m.parcels = append(m.parcels[:i], m.parcels[i+1:]...)
	return 1, nil
}

func (m *MemoryStore) MarkPaid(ctx context.Context, id string, at time.Time) (ports.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, err := m.indexOf(id)
	if err != nil {
		return ports.UpdateResult{}, fmt.Errorf("mark parcel paid: %w", err)
	}

	p := m.parcels[i]
	if p.IsPaid() {
		return ports.UpdateResult{MatchedCount: 1}, fmt.Errorf("mark parcel paid %s: %w", id, domain.ErrAlreadyPaid)
	}

	p.PaymentStatus = domain.PaymentStatusPaid
	paidAt := at
	p.PaidAt = &paidAt
	delete(p.Extra, domain.FieldPaidAt)

	return ports.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *MemoryStore) Record(ctx context.Context, record *domain.PaymentRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := *record
	r.ID = primitive.NewObjectID().Hex()
	m.payments = append(m.payments, &r)

	return r.ID, nil
}

func (m *MemoryStore) ListByUser(ctx context.Context, email string) ([]*domain.PaymentRecord, error) {
	return m.listPayments(func(r *domain.PaymentRecord) bool { return r.UserEmail == email }), nil
}

func (m *MemoryStore) ListAll(ctx context.Context) ([]*domain.PaymentRecord, error) {
	return m.listPayments(func(*domain.PaymentRecord) bool { return true }), nil
}

// listPayments returns matches newest-first; equal timestamps keep reverse insertion order.
func (m *MemoryStore) listPayments(keep func(*domain.PaymentRecord) bool) []*domain.PaymentRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.PaymentRecord, 0, len(m.payments))
	for i := len(m.payments) - 1; i >= 0; i-- {
		if r := m.payments[i]; keep(r) {
			c := *r
			out = append(out, &c)
		}
	}

	slices.SortStableFunc(out, func(a, b *domain.PaymentRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return out
}

func (m *MemoryStore) indexOf(id string) (int, error) {
	if _, err := parseObjectID(id); err != nil {
		return -1, err
	}

	for i, p := range m.parcels {
		if p.ID == id {
			return i, nil
		}
	}

	return -1, fmt.Errorf("parcel %s: %w", id, domain.ErrNotFound)
}

func cloneParcel(p *domain.Parcel) *domain.Parcel {
	c := *p
	c.Extra = make(map[string]any, len(p.Extra))
	for k, v := range p.Extra {
		c.Extra[k] = v
	}
	if p.PaidAt != nil {
		t := *p.PaidAt
		c.PaidAt = &t
	}
	return &c
}
