package ports

import "context"

// Contract for the external payment provider.
type PaymentGateway interface {
	// Create a USD payment intent and return the client secret used to confirm it.
	CreatePaymentIntent(ctx context.Context, amountInCents int64) (string, error)
}
