package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type OrderService struct {
	Repo     *repo.GormRepo
	Payments PaymentGateway
	Events   EventPublisher

	RefundTimeout time.Duration
}

func orderNotFound(err error, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("order %w: %s", ErrNotFound, id)
	}
	return err
}

func ParseStatus(s string) (models.OrderStatus, error) {
	st := models.OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID, offset, limit int) (int64, []models.Order, error) {
	return s.Repo.ListOrders(ctx, userID, offset, limit)
}

func (s *OrderService) GetOrder(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	o, err := s.Repo.GetUserOrder(ctx, userID, id)
	if err != nil {
		return nil, orderNotFound(err, id)
	}
	return o, nil
}

func (s *OrderService) AdminListOrders(ctx context.Context, status, customer string, offset, limit int) (int64, []models.Order, error) {
	f := repo.OrderFilter{Customer: customer}
	if strings.TrimSpace(status) != "" {
		st, err := ParseStatus(status)
		if err != nil {
			return 0, nil, err
		}
		f.Status = st
	}
	return s.Repo.AdminListOrders(ctx, f, offset, limit)
}

func (s *OrderService) AdminGetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, orderNotFound(err, id)
	}
	return o, nil
}

// UpdateStatus moves an order forward along pending, processing, shipped,
// delivered. A cancelled target goes through Cancel.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, target string) (*models.Order, error) {
	next, err := ParseStatus(target)
	if err != nil {
		return nil, err
	}
	if next == models.OrderStatusCancelled {
		return s.cancel(ctx, id, nil)
	}

	order, err := s.AdminGetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() || !order.Status.CanAdvanceTo(next) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", ErrInvalidTransition, order.Status, next)
	}

	if err := s.Repo.CompareAndSetStatus(ctx, id, order.Status, next); err != nil {
		if errors.Is(err, repo.ErrStatusChanged) {
			return nil, fmt.Errorf("%w: order left %s while updating to %s", ErrInvalidTransition, order.Status, next)
		}
		return nil, err
	}

	updated, err := s.AdminGetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("order_status_changed", "svc", "order.update_status", "order_id", id, "from", order.Status, "to", next)
	publish(ctx, s.Events, mykafka.TopicOrderEvents, id.String(), newOrderEvent(EventOrderStatusChanged, updated))
	return updated, nil
}

// Cancel cancels the user's own pending order.
func (s *OrderService) Cancel(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	return s.cancel(ctx, id, &userID)
}

func (s *OrderService) AdminCancel(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.cancel(ctx, id, nil)
}

// cancel claims the order and restores its stock in one transaction, then
// refunds a completed card payment. A failed refund does not undo the
// cancellation; the payment stays completed so it can be retried by hand.
func (s *OrderService) cancel(ctx context.Context, id uuid.UUID, owner *uuid.UUID) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.cancel", "order_id", id)

	var (
		order *models.Order
		err   error
	)
	if owner != nil {
		order, err = s.GetOrder(ctx, *owner, id)
	} else {
		order, err = s.AdminGetOrder(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("%w: only pending orders can be cancelled, order is %s", ErrInvalidTransition, order.Status)
	}

	if err := s.Repo.CancelOrder(ctx, order); err != nil {
		if errors.Is(err, repo.ErrStatusChanged) {
			return nil, fmt.Errorf("%w: order is no longer pending", ErrInvalidTransition)
		}
		return nil, err
	}

	// The cancellation is committed; a caller hanging up must not strand the refund.
	ctx = context.WithoutCancel(ctx)

	if order.PaymentMethod == models.PaymentMethodCreditCard && order.PaymentStatus == models.PaymentStatusCompleted {
		s.refund(ctx, l, order)
	}

	updated, err := s.AdminGetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	l.Info("order_cancelled", "payment_status", updated.PaymentStatus)
	publish(ctx, s.Events, mykafka.TopicOrderEvents, id.String(), newOrderEvent(EventOrderCancelled, updated))
	return updated, nil
}

func (s *OrderService) refund(ctx context.Context, l *slog.Logger, order *models.Order) {
	if s.Payments == nil {
		l.Warn("refund_skipped", "reason", "no payment gateway")
		return
	}

	rctx, cancel := context.WithTimeout(ctx, orDefault(s.RefundTimeout, defaultPaymentTimeout))
	defer cancel()

	r, err := s.Payments.Refund(rctx, order.PaymentDetails.TransactionID, order.FinalAmount)
	if err != nil {
		l.Warn("refund_failed", "transaction_id", order.PaymentDetails.TransactionID, "error", fmt.Errorf("%w: %v", ErrDependency, err))
		return
	}
	if err := s.Repo.MarkRefunded(ctx, order.ID, r.RefundID); err != nil {
		l.Error("mark_refunded_failed", "refund_id", r.RefundID, "error", err)
	}
}
