package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeGateway uses a PaymentIntent as the order. Confirmation reads the intent back
// from Stripe; the client-supplied signature is not used.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(key string) *StripeGateway {
	return &StripeGateway{api: client.New(key, nil)}
}

func newStripeGatewayWithBackend(key string, b stripe.Backend) *StripeGateway {
	return &StripeGateway{api: client.New(key, &stripe.Backends{API: b, Connect: b, Uploads: b})}
}

func (g *StripeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(strings.ToLower(currency)),
	}
	params.Context = ctx
	params.AddMetadata("receipt", receipt)
	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: failed to create payment intent: %w", err)
	}
	return pi.ID, nil
}

// Confirm requires the intent to have succeeded, to belong to the receipt, and the
// payment id to be the intent or its latest charge.
func (g *StripeGateway) Confirm(ctx context.Context, c Confirmation) error {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.Get(c.OrderID, params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && se.HTTPStatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: intent %s not found", ErrNotConfirmed, c.OrderID)
		}
		return fmt.Errorf("stripe: failed to retrieve payment intent: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return fmt.Errorf("%w: intent %s is %s", ErrNotConfirmed, pi.ID, pi.Status)
	}
	if pi.Metadata["receipt"] != c.Receipt {
		return fmt.Errorf("%w: intent %s belongs to another session", ErrNotConfirmed, pi.ID)
	}
	if c.PaymentID != pi.ID && (pi.LatestCharge == nil || pi.LatestCharge.ID != c.PaymentID) {
		return fmt.Errorf("%w: payment %s is not part of intent %s", ErrNotConfirmed, c.PaymentID, pi.ID)
	}
	return nil
}
