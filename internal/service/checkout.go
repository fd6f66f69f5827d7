package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

const (
	defaultPaymentTimeout = 5 * time.Second
	defaultNotifyTimeout  = 3 * time.Second
)

type CheckoutService struct {
	Repo     *repo.GormRepo
	Payments PaymentGateway
	Notifier Notifier
	Events   EventPublisher

	PaymentTimeout time.Duration
	NotifyTimeout  time.Duration
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func normalizeCheckout(req *transport.CheckoutRequest) {
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	req.ShippingAddress = strings.TrimSpace(req.ShippingAddress)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.OrderNotes = strings.TrimSpace(req.OrderNotes)
}

func cardFrom(c *transport.CardDetails) *payment.Card {
	if c == nil {
		return nil
	}
	return &payment.Card{
		Number:         c.Number,
		CardholderName: c.CardholderName,
		Expiry:         c.Expiry,
		CVV:            c.CVV,
	}
}

// Checkout turns the user's cart into a pending order. Stock is taken with a
// conditional decrement inside the same transaction that writes the order and
// empties the cart, so a failed checkout leaves cart and stock untouched.
func (s *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID, req transport.CheckoutRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "checkout.checkout", "user_id", userID)

	cart, err := s.Repo.FindCart(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	itemIDs := make([]uuid.UUID, 0, len(cart.Items))
	for _, it := range cart.Items {
		p, err := s.Repo.GetProduct(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: product %s no longer exists", ErrProductNotFound, it.ProductID)
			}
			return nil, err
		}
		if err := checkStock(p, it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, models.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
		itemIDs = append(itemIDs, it.ID)
	}

	totals := ComputeTotals(cart.Items)

	normalizeCheckout(&req)
	if err := validate.Struct(req); err != nil {
		return nil, fromValidator(err)
	}
	method := models.PaymentMethod(req.PaymentMethod)

	receipt, err := s.charge(ctx, method, totals, req.Card)
	if err != nil {
		return nil, err
	}

	order := models.NewOrder(userID, items, totals.Amounts(), req.ShippingAddress,
		models.Customer{Name: req.Name, Email: req.Email, Phone: req.Phone}, req.OrderNotes, method)
	order.PaymentStatus = receipt.Status
	order.PaymentDetails = receipt.Details

	if err := s.Repo.PlaceOrder(ctx, order, cart.ID, itemIDs); err != nil {
		s.refundAbandoned(ctx, order)

		var short *repo.ShortageError
		if errors.As(err, &short) {
			return nil, s.shortage(ctx, short)
		}
		return nil, fmt.Errorf("place order: %w", err)
	}

	l.Info("order_placed", "order_id", order.ID, "final_amount", order.FinalAmount.StringFixed(2), "payment_status", order.PaymentStatus)

	s.confirm(ctx, order)
	publish(ctx, s.Events, mykafka.TopicOrderEvents, order.ID.String(), newOrderEvent(EventOrderCreated, order))

	return order, nil
}

func (s *CheckoutService) charge(ctx context.Context, method models.PaymentMethod, totals Totals, card *transport.CardDetails) (payment.Receipt, error) {
	pctx, cancel := context.WithTimeout(ctx, orDefault(s.PaymentTimeout, defaultPaymentTimeout))
	defer cancel()

	req := payment.ChargeRequest{Method: method, Amount: totals.Total}
	if method == models.PaymentMethodCreditCard {
		req.Card = cardFrom(card)
	}

	receipt, err := s.Payments.Charge(pctx, req)
	switch {
	case err == nil:
		return receipt, nil
	case errors.Is(err, payment.ErrInvalidCard):
		return payment.Receipt{}, fmt.Errorf("%w: %v", ErrPaymentValidation, err)
	default:
		return payment.Receipt{}, fmt.Errorf("%w: payment gateway: %v", ErrDependency, err)
	}
}

// shortage reports a lost stock race with the product's current numbers.
func (s *CheckoutService) shortage(ctx context.Context, short *repo.ShortageError) error {
	p, err := s.Repo.GetProduct(ctx, short.ProductID)
	if err != nil {
		return fmt.Errorf("%w: product %s no longer exists", ErrProductNotFound, short.ProductID)
	}
	return &StockError{ProductID: p.ID, Name: p.Name, Available: p.Stock, Requested: short.Requested}
}

// refundAbandoned gives the money back for a charge whose order never made it
// to the database. Failures are logged for manual follow-up.
func (s *CheckoutService) refundAbandoned(ctx context.Context, order *models.Order) {
	if order.PaymentStatus != models.PaymentStatusCompleted || order.PaymentDetails.TransactionID == "" {
		return
	}

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), orDefault(s.PaymentTimeout, defaultPaymentTimeout))
	defer cancel()

	l := logging.FromContext(ctx).With("svc", "checkout.refund", "transaction_id", order.PaymentDetails.TransactionID)
	if _, err := s.Payments.Refund(rctx, order.PaymentDetails.TransactionID, order.FinalAmount); err != nil {
		l.Error("refund_after_failed_checkout_failed", "error", err)
		return
	}
	l.Info("refund_after_failed_checkout")
}

func (s *CheckoutService) confirm(ctx context.Context, order *models.Order) {
	if s.Notifier == nil {
		return
	}

	nctx, cancel := context.WithTimeout(ctx, orDefault(s.NotifyTimeout, defaultNotifyTimeout))
	defer cancel()

	lines := make([]map[string]any, 0, len(order.Items))
	for _, it := range order.Items {
		lines = append(lines, map[string]any{
			"name":       it.ProductName,
			"quantity":   it.Quantity,
			"unit_price": it.UnitPrice.StringFixed(2),
		})
	}

	msg := notify.Notification{
		Template: notify.TemplateOrderConfirmation,
		To:       order.CustomerEmail,
		Subject:  "Order Confirmation - #" + order.ID.String(),
		Data: map[string]any{
			"order_id":         order.ID.String(),
			"customer_name":    order.CustomerName,
			"items":            lines,
			"subtotal":         order.Subtotal.StringFixed(2),
			"tax":              order.Tax.StringFixed(2),
			"shipping":         order.Shipping.StringFixed(2),
			"final_amount":     order.FinalAmount.StringFixed(2),
			"payment_method":   string(order.PaymentMethod),
			"shipping_address": order.ShippingAddress,
		},
	}
	if err := s.Notifier.Send(nctx, msg); err != nil {
		logging.FromContext(ctx).Warn("order_confirmation_failed", "svc", "checkout.confirm", "order_id", order.ID, "error", err)
	}
}
