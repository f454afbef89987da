package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfirmed means the gateway rejected the proof of payment.
var ErrNotConfirmed = errors.New("payment not confirmed")

// Confirmation is the client's claim that an order was paid.
type Confirmation struct {
	OrderID   string
	PaymentID string
	Signature string
	Receipt   string // the session the order was created for
}

// Gateway creates payment orders with an external processor and confirms them.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error)
	// Confirm returns ErrNotConfirmed (possibly wrapped) when the payment is not proven;
	// any other error is a gateway failure.
	Confirm(ctx context.Context, c Confirmation) error
}

// NewGateway selects the gateway named by kind ("stripe" or "fake").
// The fake gateway proves payments with an HMAC under signingSecret.
func NewGateway(kind, stripeKey, signingSecret string) (Gateway, error) {
	switch strings.ToLower(kind) {
	case "stripe":
		if stripeKey == "" {
			return nil, fmt.Errorf("stripe gateway requires STRIPE_KEY")
		}
		return NewStripeGateway(stripeKey), nil
	case "", "fake":
		if signingSecret == "" {
			return nil, fmt.Errorf("fake gateway requires PAYMENT_SIGNING_SECRET")
		}
		return NewFakeGateway(signingSecret), nil
	default:
		return nil, fmt.Errorf("unknown payment gateway %q", kind)
	}
}
