package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Stripe creates PaymentIntents with automatic payment methods enabled.
type Stripe struct {
	api *client.API
}

func NewStripe(secretKey string) *Stripe {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &Stripe{api: sc}
}

func (s *Stripe) CreateIntent(ctx context.Context, amount int64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrProcessor, err)
	}
	return pi.ClientSecret, nil
}
