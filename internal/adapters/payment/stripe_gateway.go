package payment

import (
	"context"
	"errors"
	"fmt"
	"parcel-service/internal/platform/obs"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeGateway implements PaymentGateway using Stripe payment intents.
// Intents are created in USD with automatic payment methods enabled; the
// frontend confirms them with the returned client secret.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) (*StripeGateway, error) {
	return NewStripeGatewayWithBackend(secretKey, nil)
}

// NewStripeGatewayWithBackend routes all calls through backend. A nil backend
// uses Stripe's default endpoints.
func NewStripeGatewayWithBackend(secretKey string, backend stripe.Backend) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key is empty")
	}

	var backends *stripe.Backends
	if backend != nil {
		backends = &stripe.Backends{API: backend, Connect: backend, Uploads: backend}
	}

	return &StripeGateway{api: client.New(secretKey, backends)}, nil
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, amountInCents int64) (_ string, err error) {
	defer obs.Time(ctx, "stripe.CreatePaymentIntent")(&err)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && se.Msg != "" {
			return "", errors.New(se.Msg)
		}
		return "", fmt.Errorf("create payment intent: %w", err)
	}

	return pi.ClientSecret, nil
}
