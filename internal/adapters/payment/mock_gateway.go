package payment

import (
	"context"
	"fmt"
	"sync/atomic"
)

// MockGateway returns deterministic client secrets without calling a provider.
type MockGateway struct {
	seq atomic.Int64
	Err error
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (g *MockGateway) CreatePaymentIntent(ctx context.Context, amountInCents int64) (string, error) {
	if g.Err != nil {
		return "", g.Err
	}

	n := g.seq.Add(1)
	return fmt.Sprintf("pi_mock_%d_secret_%d", n, amountInCents), nil
}
