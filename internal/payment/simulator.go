// Package payment simulates a payment provider: cards are checked locally,
// PayPal always succeeds and cash on delivery is settled later.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

var (
	ErrUnsupportedMethod  = errors.New("unsupported payment method")
	ErrUnknownTransaction = errors.New("unknown transaction")
)

type ChargeRequest struct {
	Method models.PaymentMethod
	Amount decimal.Decimal
	Card   *Card
}

type Receipt struct {
	Status  models.PaymentStatus
	Details models.PaymentDetails
}

type Refund struct {
	RefundID   string
	RefundedAt time.Time
}

type Simulator struct {
	// Now defaults to time.Now.
	Now func() time.Time
	// Latency delays every call; a context that ends first wins.
	Latency time.Duration
}

func NewSimulator() *Simulator {
	return &Simulator{Now: time.Now}
}

func (s *Simulator) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *Simulator) wait(ctx context.Context) error {
	if s.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func syntheticID(prefix string, at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s%d_%s", prefix, at.UnixMilli(), suffix)
}

func (s *Simulator) Charge(ctx context.Context, req ChargeRequest) (Receipt, error) {
	if err := s.wait(ctx); err != nil {
		return Receipt{}, fmt.Errorf("payment: charge: %w", err)
	}

	now := s.now()
	switch req.Method {
	case models.PaymentMethodCreditCard:
		if err := ValidateCard(req.Card, now); err != nil {
			return Receipt{}, err
		}
		return Receipt{
			Status: models.PaymentStatusCompleted,
			Details: models.PaymentDetails{
				TransactionID:  syntheticID("TXN_", now),
				PaidAt:         &now,
				CardLast4:      last4(req.Card.Number),
				CardholderName: strings.TrimSpace(req.Card.CardholderName),
				Method:         "Credit Card",
			},
		}, nil
	case models.PaymentMethodPayPal:
		return Receipt{
			Status: models.PaymentStatusCompleted,
			Details: models.PaymentDetails{
				TransactionID: syntheticID("PP_", now),
				PaidAt:        &now,
				Method:        "PayPal",
			},
		}, nil
	case models.PaymentMethodCashOnDelivery:
		return Receipt{
			Status:  models.PaymentStatusPending,
			Details: models.PaymentDetails{Method: "Cash on Delivery"},
		}, nil
	default:
		return Receipt{}, fmt.Errorf("%w: %q", ErrUnsupportedMethod, req.Method)
	}
}

func (s *Simulator) Refund(ctx context.Context, transactionID string, amount decimal.Decimal) (Refund, error) {
	if err := s.wait(ctx); err != nil {
		return Refund{}, fmt.Errorf("payment: refund: %w", err)
	}
	if strings.TrimSpace(transactionID) == "" {
		return Refund{}, fmt.Errorf("%w: empty transaction id", ErrUnknownTransaction)
	}
	if !amount.IsPositive() {
		return Refund{}, fmt.Errorf("payment: refund amount must be positive, got %s", amount.StringFixed(2))
	}

	now := s.now()
	return Refund{RefundID: syntheticID("RF_", now), RefundedAt: now}, nil
}
