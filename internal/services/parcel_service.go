package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"parcel-service/internal/domain"
	"parcel-service/internal/platform/metrics"
	"parcel-service/internal/platform/obs"
	"parcel-service/internal/ports"
	"time"
)

// ParcelService runs parcel use cases against a ParcelStore.
// It validates new parcels and emits a parcel.paid event after a successful
// payment confirmation; everything else passes straight through to the store.
type ParcelService struct {
	Store  ports.ParcelStore
	Events ports.EventPublisher
	Now    func() time.Time
}

func NewParcelService(store ports.ParcelStore, events ports.EventPublisher) *ParcelService {
	return &ParcelService{Store: store, Events: events, Now: time.Now}
}

func (s *ParcelService) List(ctx context.Context, email string) ([]*domain.Parcel, error) {
	parcels, err := s.Store.List(ctx, ports.ParcelFilter{Email: email})
	if err != nil {
		return nil, fmt.Errorf("list parcels: %w", err)
	}
	return parcels, nil
}

func (s *ParcelService) Get(ctx context.Context, id string) (*domain.Parcel, error) {
	p, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get parcel %q: %w", id, err)
	}
	return p, nil
}

// Create rejects parcels without sender or receiver before touching the store.
func (s *ParcelService) Create(ctx context.Context, parcel *domain.Parcel) (string, error) {
	if parcel == nil {
		return "", errors.New("create parcel: parcel must be non-nil")
	}

	if err := parcel.Validate(); err != nil {
		return "", err
	}

	id, err := s.Store.Create(ctx, parcel)
	if err != nil {
		return "", fmt.Errorf("create parcel: %w", err)
	}

	metrics.ParcelsCreatedTotal.Inc()
	return id, nil
}

func (s *ParcelService) Update(ctx context.Context, id string, fields map[string]any) (ports.UpdateResult, error) {
	res, err := s.Store.Update(ctx, id, fields)
	if err != nil {
		return ports.UpdateResult{}, fmt.Errorf("update parcel %q: %w", id, err)
	}
	return res, nil
}

func (s *ParcelService) Delete(ctx context.Context, id string) (int64, error) {
	n, err := s.Store.Delete(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete parcel %q: %w", id, err)
	}
	return n, nil
}

// MarkPaid moves an unpaid parcel to paid. The event is published after the
// write; a publish failure is logged and does not fail the call.
func (s *ParcelService) MarkPaid(ctx context.Context, id string) (ports.UpdateResult, error) {
	at := s.Now().UTC()

	res, err := s.Store.MarkPaid(ctx, id, at)
	if err != nil {
		return ports.UpdateResult{}, fmt.Errorf("mark parcel %q paid: %w", id, err)
	}

	metrics.ParcelsPaidTotal.Inc()

	publish(ctx, s.Events, ports.TopicParcelPaid, map[string]any{
		"parcelId": id,
		"paidAt":   at.Format(time.RFC3339),
	})

	return res, nil
}

func publish(ctx context.Context, events ports.EventPublisher, topic string, data map[string]any) {
	if events == nil {
		return
	}

	if err := events.Publish(ctx, topic, ports.Event{Type: topic, Data: data}); err != nil {
		log.Printf("req_id=%s op=publish topic=%s err=%v", obs.RequestID(ctx), topic, err)
	}
}
