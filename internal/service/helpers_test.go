package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/db/dbtest"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type fakeGateway struct {
	sim *payment.Simulator

	mu        sync.Mutex
	onCharge  func()
	onRefund  func()
	refundErr error
	refunds   []string
}

func (g *fakeGateway) Charge(ctx context.Context, req payment.ChargeRequest) (payment.Receipt, error) {
	rec, err := g.sim.Charge(ctx, req)
	if err == nil && g.onCharge != nil {
		g.onCharge()
	}
	return rec, err
}

func (g *fakeGateway) Refund(ctx context.Context, txID string, amount decimal.Decimal) (payment.Refund, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.onRefund != nil {
		g.onRefund()
	}
	if g.refundErr != nil {
		return payment.Refund{}, g.refundErr
	}
	if err := ctx.Err(); err != nil {
		return payment.Refund{}, err
	}
	g.refunds = append(g.refunds, txID)
	return g.sim.Refund(ctx, txID, amount)
}

func (g *fakeGateway) refunded() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.refunds...)
}

type fakeNotifier struct {
	mu   sync.Mutex
	err  error
	sent []notify.Notification
}

func (n *fakeNotifier) Send(_ context.Context, msg notify.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

type fakeEvents struct {
	mu     sync.Mutex
	err    error
	topics []string
	events []any
}

func (f *fakeEvents) PublishEvent(_ context.Context, topic, _ string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	f.events = append(f.events, event)
	return f.err
}

func (f *fakeEvents) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		switch ev := e.(type) {
		case OrderEvent:
			out = append(out, ev.Type)
		case ProductEvent:
			out = append(out, ev.Type)
		}
	}
	return out
}

type env struct {
	db       *gorm.DB
	repo     *repo.GormRepo
	catalog  *CatalogService
	carts    *CartService
	checkout *CheckoutService
	orders   *OrderService
	gw       *fakeGateway
	notifier *fakeNotifier
	events   *fakeEvents
}

func newEnv(t *testing.T) *env {
	t.Helper()

	gdb := dbtest.Open(t)
	r := &repo.GormRepo{DB: gdb}
	gw := &fakeGateway{sim: payment.NewSimulator()}
	n := &fakeNotifier{}
	ev := &fakeEvents{}

	return &env{
		db:       gdb,
		repo:     r,
		catalog:  &CatalogService{Repo: r, Events: ev},
		carts:    &CartService{Repo: r},
		checkout: &CheckoutService{Repo: r, Payments: gw, Notifier: n, Events: ev},
		orders:   &OrderService{Repo: r, Payments: gw, Events: ev},
		gw:       gw,
		notifier: n,
		events:   ev,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (e *env) seedProduct(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	p, err := e.repo.CreateProduct(context.Background(), models.NewProduct(name, name+" from the bakery", "Cakes", dec(price), stock))
	require.NoError(t, err)
	return p
}

func (e *env) product(t *testing.T, id uuid.UUID) *models.Product {
	t.Helper()
	p, err := e.repo.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p
}

func (e *env) setStock(t *testing.T, id uuid.UUID, stock int) {
	t.Helper()
	require.NoError(t, e.db.Model(&models.Product{}).Where("id = ?", id).Update("stock", stock).Error)
}

func (e *env) cartItems(t *testing.T, userID uuid.UUID) []models.CartItem {
	t.Helper()
	cart, err := e.repo.FindCart(context.Background(), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	require.NoError(t, err)
	return cart.Items
}

func (e *env) orderCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Order{}).Count(&n).Error)
	return n
}

func checkoutRequest(method models.PaymentMethod) transport.CheckoutRequest {
	req := transport.CheckoutRequest{
		PaymentMethod:   string(method),
		ShippingAddress: "12 Baker Street, London",
		Name:            "Ada Lovelace",
		Email:           "ada@example.com",
		Phone:           "+44 20 7946 0000",
		TermsAccepted:   true,
	}
	if method == models.PaymentMethodCreditCard {
		req.Card = &transport.CardDetails{
			Number:         "4242 4242 4242 4242",
			CardholderName: "Ada Lovelace",
			Expiry:         "12/99",
			CVV:            "123",
		}
	}
	return req
}
