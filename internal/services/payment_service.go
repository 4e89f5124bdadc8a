package services

import (
	"context"
	"fmt"
	"log"
	"parcel-service/internal/domain"
	"parcel-service/internal/platform/metrics"
	"parcel-service/internal/platform/obs"
	"parcel-service/internal/ports"
	"time"
)

type RecordPaymentRequest struct {
	ParcelID        string
	UserEmail       string
	Amount          float64
	PaymentIntentID string
}

// DefaultReinvalidateDelay is how long after a history write the cached
// listings are dropped a second time.
const DefaultReinvalidateDelay = 500 * time.Millisecond

// PaymentService creates payment intents and maintains the payment history log.
// History listings are read through Cache when one is configured.
//
// A reader that missed the cache before a write can still fill it with the old
// listing after the write's invalidation. The second invalidation, ReinvalidateDelay
// after the write, bounds how long such a listing is served. Zero disables it.
type PaymentService struct {
	Gateway ports.PaymentGateway
	History ports.PaymentHistoryStore
	Cache   ports.PaymentHistoryCache
	Events  ports.EventPublisher
	Now     func() time.Time

	ReinvalidateDelay time.Duration
}

func NewPaymentService(
	gateway ports.PaymentGateway,
	history ports.PaymentHistoryStore,
	cache ports.PaymentHistoryCache,
	events ports.EventPublisher,
) *PaymentService {
	return &PaymentService{
		Gateway: gateway,
		History: history,
		Cache:   cache,
		Events:  events,
		Now:     time.Now,

		ReinvalidateDelay: DefaultReinvalidateDelay,
	}
}

// CreateIntent returns the client secret for a new payment intent.
// A zero amount is rejected without calling the gateway. Gateway errors are
// returned as-is so the provider's message reaches the client.
func (s *PaymentService) CreateIntent(ctx context.Context, amountInCents int64) (string, error) {
	if amountInCents == 0 {
		return "", domain.NewValidationError("Amount is required")
	}

	secret, err := s.Gateway.CreatePaymentIntent(ctx, amountInCents)
	if err != nil {
		metrics.PaymentIntentsTotal.WithLabelValues("error").Inc()
		return "", err
	}

	metrics.PaymentIntentsTotal.WithLabelValues("created").Inc()
	return secret, nil
}

// RecordHistory appends a paid record stamped with the server time.
// It does not touch the parcel; callers mark the parcel paid separately.
func (s *PaymentService) RecordHistory(ctx context.Context, req RecordPaymentRequest) (*domain.PaymentRecord, error) {
	rec := domain.NewPaymentRecord(req.ParcelID, req.UserEmail, req.Amount, req.PaymentIntentID, s.Now().UTC())

	id, err := s.History.Record(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("record payment history: %w", err)
	}
	rec.ID = id

	metrics.PaymentHistoryRecordsTotal.Inc()

	if s.Cache != nil {
		s.invalidate(ctx, req.UserEmail)

		if s.ReinvalidateDelay > 0 {
			bg := context.WithoutCancel(ctx)
			time.AfterFunc(s.ReinvalidateDelay, func() { s.invalidate(bg, req.UserEmail) })
		}
	}

	publish(ctx, s.Events, ports.TopicPaymentRecorded, map[string]any{
		"paymentId":       id,
		"parcelId":        req.ParcelID,
		"userEmail":       req.UserEmail,
		"amount":          req.Amount,
		"paymentIntentId": req.PaymentIntentID,
	})

	return rec, nil
}

func (s *PaymentService) ListByUser(ctx context.Context, email string) ([]*domain.PaymentRecord, error) {
	return s.cached(ctx, email, func() ([]*domain.PaymentRecord, error) {
		recs, err := s.History.ListByUser(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("list payment history for %q: %w", email, err)
		}
		return recs, nil
	})
}

func (s *PaymentService) ListAll(ctx context.Context) ([]*domain.PaymentRecord, error) {
	return s.cached(ctx, "", func() ([]*domain.PaymentRecord, error) {
		recs, err := s.History.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("list payment history: %w", err)
		}
		return recs, nil
	})
}

// invalidate drops the listing for email and the full listing.
func (s *PaymentService) invalidate(ctx context.Context, email string) {
	if err := s.Cache.Invalidate(ctx, email, ""); err != nil {
		log.Printf("req_id=%s op=history.invalidate err=%v", obs.RequestID(ctx), err)
	}
}

// cached serves key from the cache when possible and fills it on a miss.
// Cache failures degrade to a direct store read.
func (s *PaymentService) cached(
	ctx context.Context,
	key string,
	load func() ([]*domain.PaymentRecord, error),
) ([]*domain.PaymentRecord, error) {
	if s.Cache == nil {
		return load()
	}

	if recs, ok, err := s.Cache.Get(ctx, key); err != nil {
		log.Printf("req_id=%s op=history.cache.get err=%v", obs.RequestID(ctx), err)
	} else if ok {
		return recs, nil
	}

	recs, err := load()
	if err != nil {
		return nil, err
	}

	if err := s.Cache.Put(ctx, key, recs); err != nil {
		log.Printf("req_id=%s op=history.cache.put err=%v", obs.RequestID(ctx), err)
	}

	return recs, nil
}
