package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

func fixedSimulator() *Simulator {
	at := time.Date(2026, time.March, 1, 9, 30, 0, 0, time.UTC)
	return &Simulator{Now: func() time.Time { return at }}
}

func TestCharge_CreditCard(t *testing.T) {
	t.Parallel()

	s := fixedSimulator()
	rec, err := s.Charge(context.Background(), ChargeRequest{
		Method: models.PaymentMethodCreditCard,
		Amount: decimal.RequireFromString("49.00"),
		Card:   &Card{Number: "4000 0566 5566 5556", CardholderName: " Grace Hopper ", Expiry: "03/26", CVV: "999"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusCompleted, rec.Status)
	assert.True(t, strings.HasPrefix(rec.Details.TransactionID, "TXN_"))
	assert.Equal(t, "5556", rec.Details.CardLast4)
	assert.Equal(t, "Grace Hopper", rec.Details.CardholderName)
	require.NotNil(t, rec.Details.PaidAt)
	assert.NotContains(t, rec.Details.TransactionID, "4000")
}

func TestCharge_CreditCardRejected(t *testing.T) {
	t.Parallel()

	_, err := fixedSimulator().Charge(context.Background(), ChargeRequest{
		Method: models.PaymentMethodCreditCard,
		Amount: decimal.RequireFromString("10"),
		Card:   &Card{Number: "4000", CardholderName: "x", Expiry: "03/26", CVV: "999"},
	})
	require.ErrorIs(t, err, ErrInvalidCard)
}

func TestCharge_PayPal(t *testing.T) {
	t.Parallel()

	rec, err := fixedSimulator().Charge(context.Background(), ChargeRequest{Method: models.PaymentMethodPayPal})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, rec.Status)
	assert.True(t, strings.HasPrefix(rec.Details.TransactionID, "PP_"))
	assert.Equal(t, "PayPal", rec.Details.Method)
}

func TestCharge_CashOnDelivery(t *testing.T) {
	t.Parallel()

	rec, err := fixedSimulator().Charge(context.Background(), ChargeRequest{Method: models.PaymentMethodCashOnDelivery})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, rec.Status)
	assert.Empty(t, rec.Details.TransactionID)
	assert.Nil(t, rec.Details.PaidAt)
}

func TestCharge_UnknownMethod(t *testing.T) {
	t.Parallel()

	_, err := fixedSimulator().Charge(context.Background(), ChargeRequest{Method: "barter"})
	require.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestCharge_HonoursDeadline(t *testing.T) {
	t.Parallel()

	s := fixedSimulator()
	s.Latency = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Charge(ctx, ChargeRequest{Method: models.PaymentMethodPayPal})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRefund(t *testing.T) {
	t.Parallel()

	s := fixedSimulator()
	r, err := s.Refund(context.Background(), "TXN_1", decimal.RequireFromString("12.50"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(r.RefundID, "RF_"))

	_, err = s.Refund(context.Background(), "", decimal.RequireFromString("12.50"))
	require.ErrorIs(t, err, ErrUnknownTransaction)

	_, err = s.Refund(context.Background(), "TXN_1", decimal.Zero)
	require.Error(t, err)
}
