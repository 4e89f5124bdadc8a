package repositories

import (
	"context"
	"errors"
	"fmt"
	"parcel-service/internal/domain"
	"parcel-service/internal/platform/obs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Postgres-backed implementation of the PaymentHistoryStore port.
type PostgresPaymentHistoryStore struct {
	DB *gorm.DB
}

func NewPostgresPaymentHistoryStore(db *gorm.DB) *PostgresPaymentHistoryStore {
	return &PostgresPaymentHistoryStore{DB: db}
}

func (s *PostgresPaymentHistoryStore) Record(ctx context.Context, record *domain.PaymentRecord) (_ string, err error) {
	defer obs.Time(ctx, "payments.postgres.Record")(&err)

	if s.DB == nil {
		return "", errors.New("postgres payment history store: DB is nil")
	}
	if record == nil {
		return "", errors.New("record payment: record is nil")
	}

	row := paymentRow{
		ID:              uuid.NewString(),
		ParcelID:        record.ParcelID,
		UserEmail:       record.UserEmail,
		Amount:          record.Amount,
		PaymentIntentID: record.PaymentIntentID,
		PaymentStatus:   string(record.PaymentStatus),
		CreatedAt:       record.CreatedAt,
	}

	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("record payment: insert: %w", err)
	}

	return row.ID, nil
}

func (s *PostgresPaymentHistoryStore) ListByUser(ctx context.Context, email string) (_ []*domain.PaymentRecord, err error) {
	defer obs.Time(ctx, "payments.postgres.ListByUser")(&err)

	return s.find(s.DB.WithContext(ctx).Where("user_email = ?", email))
}

func (s *PostgresPaymentHistoryStore) ListAll(ctx context.Context) (_ []*domain.PaymentRecord, err error) {
	defer obs.Time(ctx, "payments.postgres.ListAll")(&err)

	return s.find(s.DB.WithContext(ctx))
}

func (s *PostgresPaymentHistoryStore) find(q *gorm.DB) ([]*domain.PaymentRecord, error) {
	var rows []paymentRow
	if err := q.Order("created_at DESC").Order("seq DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list payments: query paymentHistory table: %w", err)
	}

	records := make([]*domain.PaymentRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, &domain.PaymentRecord{
			ID:              r.ID,
			ParcelID:        r.ParcelID,
			UserEmail:       r.UserEmail,
			Amount:          r.Amount,
			PaymentIntentID: r.PaymentIntentID,
			PaymentStatus:   domain.PaymentStatus(r.PaymentStatus),
			CreatedAt:       r.CreatedAt.UTC(),
		})
	}

	return records, nil
}
