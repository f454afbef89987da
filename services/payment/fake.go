package payment

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// FakeGateway issues local order ids and accepts HMAC-signed confirmations.
// Used in development and tests.
type FakeGateway struct {
	mu     sync.Mutex
	Secret string
	Orders map[string]string // orderID -> receipt
	Err    error
	// ConfirmErr, when set, is returned by Confirm as a gateway failure.
	ConfirmErr error
}

func NewFakeGateway(secret string) *FakeGateway {
	return &FakeGateway{Secret: secret, Orders: map[string]string{}}
}

func (g *FakeGateway) CreateOrder(_ context.Context, _ int64, _, receipt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return "", g.Err
	}
	id := "order_" + uuid.NewString()
	g.Orders[id] = receipt
	return id, nil
}

func (g *FakeGateway) Confirm(_ context.Context, c Confirmation) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ConfirmErr != nil {
		return g.ConfirmErr
	}
	if !VerifySignature(g.Secret, c.OrderID, c.PaymentID, c.Signature) {
		return ErrNotConfirmed
	}
	if receipt, ok := g.Orders[c.OrderID]; ok && receipt != c.Receipt {
		return ErrNotConfirmed
	}
	return nil
}
