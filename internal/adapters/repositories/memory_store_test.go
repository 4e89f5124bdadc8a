package repositories

import (
	"context"
	"errors"
	"parcel-service/internal/domain"
	"parcel-service/internal/ports"
	"testing"
	"time"
)

func TestMemoryStoreListNewestFirstAndFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first, _ := store.Create(ctx, &domain.Parcel{SenderName: "A", ReceiverName: "B", UserEmail: "a@x.io"})
	second, _ := store.Create(ctx, &domain.Parcel{SenderName: "C", ReceiverName: "D", UserEmail: "c@x.io"})
	third, _ := store.Create(ctx, &domain.Parcel{SenderName: "E", ReceiverName: "F", UserEmail: "a@x.io"})

	all, err := store.List(ctx, ports.ParcelFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 || all[0].ID != third || all[1].ID != second || all[2].ID != first {
		t.Fatalf("unexpected order: %v, %v, %v", all[0].ID, all[1].ID, all[2].ID)
	}

	mine, _ := store.List(ctx, ports.ParcelFilter{Email: "a@x.io"})
	if len(mine) != 2 {
		t.Fatalf("expected 2 parcels for a@x.io, got %d", len(mine))
	}
	for _, p := range mine {
		if p.UserEmail != "a@x.io" {
			t.Errorf("filter leaked parcel for %q", p.UserEmail)
		}
	}
}

func TestMemoryStoreMalformedID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Get(ctx, "not-an-id"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	n, err := store.Delete(ctx, "not-an-id")
	if err != nil || n != 0 {
		t.Fatalf("Delete = (%d, %v), want (0, nil)", n, err)
	}

	res, err := store.Update(ctx, "not-an-id", map[string]any{"x": 1})
	if err != nil || res.MatchedCount != 0 {
		t.Fatalf("Update = (%+v, %v), want no match", res, err)
	}
}

func TestMemoryStoreUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, _ := store.Create(ctx, &domain.Parcel{SenderName: "A", ReceiverName: "B", Extra: map[string]any{"weight": 1.0}})

	res, err := store.Update(ctx, id, map[string]any{"receiver_name": "Z", "_id": "hijack", "note": "leave at door"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.MatchedCount != 1 {
		t.Fatalf("MatchedCount = %d, want 1", res.MatchedCount)
	}

	p, _ := store.Get(ctx, id)
	if p.ID != id {
		t.Errorf("_id was overwritten: %q", p.ID)
	}
	if p.ReceiverName != "Z" || p.SenderName != "A" {
		t.Errorf("merge failed: %+v", p)
	}
	if p.Extra["weight"] != 1.0 || p.Extra["note"] != "leave at door" {
		t.Errorf("extra fields lost: %v", p.Extra)
	}
}

func TestMemoryStoreUpdateReportsUnchanged(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, _ := store.Create(ctx, &domain.Parcel{SenderName: "A", ReceiverName: "B", Extra: map[string]any{"weight": 1.0}})

	cases := []struct {
		name   string
		fields map[string]any
	}{
		{"same values", map[string]any{"sender_name": "A", "weight": 1.0}},
		{"empty set", map[string]any{}},
		{"only _id", map[string]any{"_id": "other"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := store.Update(ctx, id, tc.fields)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.MatchedCount != 1 || res.ModifiedCount != 0 {
				t.Fatalf("Update = %+v, want matched 1 modified 0", res)
			}
		})
	}

	res, _ := store.Update(ctx, id, map[string]any{"weight": 2.0})
	if res.ModifiedCount != 1 {
		t.Fatalf("ModifiedCount = %d, want 1", res.ModifiedCount)
	}
}

func TestMemoryStoreUpdateFreeFormPaidAt(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, _ := store.Create(ctx, &domain.Parcel{SenderName: "A", ReceiverName: "B"})

	if _, err := store.Update(ctx, id, map[string]any{"paidAt": "tomorrow"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PaidAt != nil || p.Extra["paidAt"] != "tomorrow" {
		t.Fatalf("unexpected parcel: %+v", p)
	}
}

func TestMemoryStoreMarkPaidOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	at := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	id, _ := store.Create(ctx, &domain.Parcel{SenderName: "A", ReceiverName: "B"})

	if _, err := store.MarkPaid(ctx, id, at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, _ := store.Get(ctx, id)
	if !p.IsPaid() || p.PaidAt == nil || !p.PaidAt.Equal(at) {
		t.Fatalf("parcel not marked paid: %+v", p)
	}

	if _, err := store.MarkPaid(ctx, id, at.Add(time.Hour)); !errors.Is(err, domain.ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}

	missing := "65a000000000000000000000"
	if _, err := store.MarkPaid(ctx, missing, at); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStorePaymentHistoryOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	store.Record(ctx, domain.NewPaymentRecord("p1", "a@x.io", 10, "pi_1", base))
	store.Record(ctx, domain.NewPaymentRecord("p2", "b@x.io", 20, "pi_2", base.Add(2*time.Minute)))
	store.Record(ctx, domain.NewPaymentRecord("p3", "a@x.io", 30, "pi_3", base.Add(time.Minute)))

	all, _ := store.ListAll(ctx)
	if len(all) != 3 || all[0].PaymentIntentID != "pi_2" || all[1].PaymentIntentID != "pi_3" || all[2].PaymentIntentID != "pi_1" {
		t.Fatalf("unexpected order: %+v", all)
	}

	mine, _ := store.ListByUser(ctx, "a@x.io")
	if len(mine) != 2 || mine[0].PaymentIntentID != "pi_3" {
		t.Fatalf("unexpected user history: %+v", mine)
	}
}
