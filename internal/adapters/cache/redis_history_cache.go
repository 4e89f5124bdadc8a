package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"parcel-service/internal/domain"
	"parcel-service/internal/platform/obs"
	"time"

	"github.com/redis/go-redis/v9"
)

const allPaymentsKey = "payments:all"

// RedisHistoryCache is a Redis-backed cache for payment history listings.
// Entries are keyed per user email, with one extra key for the unrestricted list.
type RedisHistoryCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisHistoryCache(client *redis.Client, ttl time.Duration) *RedisHistoryCache {
	return &RedisHistoryCache{Client: client, TTL: ttl}
}

func historyKey(email string) string {
	if email == "" {
		return allPaymentsKey
	}
	return "payments:" + email
}

// Get returns the cached listing for email (or the full listing when email is
// empty). The bool is false on a miss.
func (c *RedisHistoryCache) Get(ctx context.Context, email string) (_ []*domain.PaymentRecord, _ bool, err error) {
	defer obs.Time(ctx, "history.cache.Get")(&err)

	if c.Client == nil {
		return nil, false, errors.New("history cache: client is nil")
	}

	raw, err := c.Client.Get(ctx, historyKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get history cache: %w", err)
	}

	var records []*domain.PaymentRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, false, fmt.Errorf("get history cache: decode %q: %w", historyKey(email), err)
	}

	return records, true, nil
}

func (c *RedisHistoryCache) Put(ctx context.Context, email string, records []*domain.PaymentRecord) (err error) {
	defer obs.Time(ctx, "history.cache.Put")(&err)

	if c.Client == nil {
		return errors.New("history cache: client is nil")
	}

	if records == nil {
		records = []*domain.PaymentRecord{}
	}

	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("put history cache: encode: %w", err)
	}

	if err := c.Client.Set(ctx, historyKey(email), raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("put history cache: %w", err)
	}

	return nil
}

// Invalidate drops the cached listings for the given emails. An empty email
// drops the full listing.
func (c *RedisHistoryCache) Invalidate(ctx context.Context, emails ...string) (err error) {
	defer obs.Time(ctx, "history.cache.Invalidate")(&err)

	if c.Client == nil {
		return errors.New("history cache: client is nil")
	}

	if len(emails) == 0 {
		return nil
	}

	keys := make([]string, 0, len(emails))
	for _, e := range emails {
		keys = append(keys, historyKey(e))
	}

	if err := c.Client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate history cache: %w", err)
	}

	return nil
}
