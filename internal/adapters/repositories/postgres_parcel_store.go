package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"parcel-service/internal/domain"
	"parcel-service/internal/platform/obs"
	"parcel-service/internal/ports"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Postgres-backed implementation of the ParcelStore port.
type PostgresParcelStore struct {
	DB *gorm.DB
}

func NewPostgresParcelStore(db *gorm.DB) *PostgresParcelStore {
	return &PostgresParcelStore{DB: db}
}

// parseUUID reports malformed identifiers as domain.ErrNotFound.
func parseUUID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("invalid uuid %q: %w", id, domain.ErrNotFound)
	}
	return u.String(), nil
}

func (s *PostgresParcelStore) List(ctx context.Context, filter ports.ParcelFilter) (_ []*domain.Parcel, err error) {
	defer obs.Time(ctx, "parcels.postgres.List")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres parcel store: DB is nil")
	}

	q := s.DB.WithContext(ctx).Order("seq DESC")
	if filter.Email != "" {
		q = q.Where("user_email = ?", filter.Email)
	}

	var rows []parcelRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list parcels: query parcels table: %w", err)
	}

	parcels := make([]*domain.Parcel, 0, len(rows))
	for _, r := range rows {
		parcels = append(parcels, parcelFromRow(r))
	}

	return parcels, nil
}

func (s *PostgresParcelStore) Get(ctx context.Context, id string) (_ *domain.Parcel, err error) {
	defer obs.Time(ctx, "parcels.postgres.Get")(&err)

	key, err := parseUUID(id)
	if err != nil {
		return nil, fmt.Errorf("get parcel: %w", err)
	}

	var row parcelRow
	if err := s.DB.WithContext(ctx).First(&row, "id = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("get parcel %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get parcel %s: %w", id, err)
	}

	return parcelFromRow(row), nil
}

func (s *PostgresParcelStore) Create(ctx context.Context, parcel *domain.Parcel) (_ string, err error) {
	defer obs.Time(ctx, "parcels.postgres.Create")(&err)

	if parcel == nil {
		return "", errors.New("create parcel: parcel is nil")
	}

	row := parcelRow{
		ID:            uuid.NewString(),
		UserEmail:     parcel.UserEmail,
		PaymentStatus: string(parcel.PaymentStatus),
		Doc:           parcel.Fields(),
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("create parcel: insert: %w", err)
	}

	return row.ID, nil
}

func (s *PostgresParcelStore) Update(ctx context.Context, id string, fields map[string]any) (_ ports.UpdateResult, err error) {
	defer obs.Time(ctx, "parcels.postgres.Update")(&err)

	key, err := parseUUID(id)
	if err != nil {
		return ports.UpdateResult{}, nil
	}

	set := setFields(fields)
	if len(set) == 0 {
		var n int64
		if err := s.DB.WithContext(ctx).Model(&parcelRow{}).Where("id = ?", key).Count(&n).Error; err != nil {
			return ports.UpdateResult{}, fmt.Errorf("update parcel %s: count: %w", id, err)
		}
		return ports.UpdateResult{MatchedCount: n}, nil
	}

	patch, err := json.Marshal(set)
	if err != nil {
		return ports.UpdateResult{}, fmt.Errorf("update parcel %s: marshal patch: %w", id, err)
	}

	columns := map[string]any{"doc": gorm.Expr("doc || ?::jsonb", string(patch))}
	if v, ok := set[domain.FieldUserEmail].(string); ok {
		columns["user_email"] = v
	}
	if v, ok := set[domain.FieldPaymentStatus].(string); ok {
		columns["payment_status"] = v
	}

	res := s.DB.WithContext(ctx).Model(&parcelRow{}).Where("id = ?", key).Updates(columns)
	if res.Error != nil {
		return ports.UpdateResult{}, fmt.Errorf("update parcel %s: %w", id, res.Error)
	}

	return ports.UpdateResult{MatchedCount: res.RowsAffected, ModifiedCount: res.RowsAffected}, nil
}

func (s *PostgresParcelStore) Delete(ctx context.Context, id string) (_ int64, err error) {
	defer obs.Time(ctx, "parcels.postgres.Delete")(&err)

	key, err := parseUUID(id)
	if err != nil {
		return 0, nil
	}

	res := s.DB.WithContext(ctx).Where("id = ?", key).Delete(&parcelRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete parcel %s: %w", id, res.Error)
	}

	return res.RowsAffected, nil
}

func (s *PostgresParcelStore) MarkPaid(ctx context.Context, id string, at time.Time) (_ ports.UpdateResult, err error) {
	defer obs.Time(ctx, "parcels.postgres.MarkPaid")(&err)

	key, err := parseUUID(id)
	if err != nil {
		return ports.UpdateResult{}, fmt.Errorf("mark parcel paid: %w", err)
	}

	patch, err := json.Marshal(map[string]any{
		domain.FieldPaymentStatus: string(domain.PaymentStatusPaid),
		domain.FieldPaidAt:        at.UTC(),
	})
	if err != nil {
		return ports.UpdateResult{}, fmt.Errorf("mark parcel paid %s: marshal patch: %w", id, err)
	}

	res := s.DB.WithContext(ctx).
		Model(&parcelRow{}).
		Where("id = ? AND (payment_status IS NULL OR payment_status <> ?)", key, string(domain.PaymentStatusPaid)).
		Updates(map[string]any{
			"payment_status": string(domain.PaymentStatusPaid),
			"doc":            gorm.Expr("doc || ?::jsonb", string(patch)),
		})
	if res.Error != nil {
		return ports.UpdateResult{}, fmt.Errorf("mark parcel paid %s: %w", id, res.Error)
	}

	if res.RowsAffected == 0 {
		var n int64
		if err := s.DB.WithContext(ctx).Model(&parcelRow{}).Where("id = ?", key).Count(&n).Error; err != nil {
			return ports.UpdateResult{}, fmt.Errorf("mark parcel paid %s: count: %w", id, err)
		}
		if n == 0 {
			return ports.UpdateResult{}, fmt.Errorf("mark parcel paid %s: %w", id, domain.ErrNotFound)
		}
		return ports.UpdateResult{MatchedCount: n}, fmt.Errorf("mark parcel paid %s: %w", id, domain.ErrAlreadyPaid)
	}

	return ports.UpdateResult{MatchedCount: res.RowsAffected, ModifiedCount: res.RowsAffected}, nil
}

func parcelFromRow(r parcelRow) *domain.Parcel {
	fields := make(map[string]any, len(r.Doc)+1)
	for k, v := range r.Doc {
		fields[k] = v
	}
	fields[domain.FieldID] = r.ID

	return domain.ParcelFromFields(fields)
}
