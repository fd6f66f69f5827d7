package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

// ErrStatusChanged means the order was no longer in the expected status when
// the write landed.
var ErrStatusChanged = errors.New("order status changed concurrently")

type OrderFilter struct {
	Status   models.OrderStatus
	Customer string
}

// PlaceOrder persists the order, takes stock for every line and removes the
// ordered cart items in one transaction. Items added to the cart after it was
// priced stay in the cart. A *ShortageError rolls all of it back.
func (r *GormRepo) PlaceOrder(ctx context.Context, order *models.Order, cartID uuid.UUID, itemIDs []uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for _, it := range order.Items {
			if err := decrementStock(tx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		if len(itemIDs) > 0 {
			err := tx.Where("cart_id = ? AND id IN ?", cartID, itemIDs).Delete(&models.CartItem{}).Error
			if err != nil {
				return err
			}
		}
		return touchCart(tx, cartID)
	})
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items", itemsByPosition).
		Where("id = ?", id).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) GetUserOrder(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items", itemsByPosition).
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, userID uuid.UUID, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	return listOrders(q, offset, limit)
}

func (r *GormRepo) AdminListOrders(ctx context.Context, f OrderFilter, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if c := strings.TrimSpace(f.Customer); c != "" {
		p := likePattern(c)
		q = q.Where(`(LOWER(customer_name) LIKE ? ESCAPE '\' OR LOWER(customer_email) LIKE ? ESCAPE '\')`, p, p)
	}
	return listOrders(q, offset, limit)
}

func listOrders(q *gorm.DB, offset, limit int) (int64, []models.Order, error) {
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	orders := make([]models.Order, 0, limit)
	if err := q.Preload("Items", itemsByPosition).
		Order("created_at DESC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// CompareAndSetStatus moves the order from one status to another only if it
// is still in the first one.
func (r *GormRepo) CompareAndSetStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) error {
	return casStatus(r.DB.WithContext(ctx), id, from, to)
}

// CancelOrder claims a pending order and puts its stock back in one transaction.
func (r *GormRepo) CancelOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := casStatus(tx, order.ID, models.OrderStatusPending, models.OrderStatusCancelled); err != nil {
			return err
		}
		for _, it := range order.Items {
			if err := restoreStock(tx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormRepo) MarkRefunded(ctx context.Context, id uuid.UUID, refundID string) error {
	return r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"payment_status":    models.PaymentStatusRefunded,
			"payment_refund_id": refundID,
			"updated_at":        time.Now().UTC(),
		}).Error
}

func casStatus(db *gorm.DB, id uuid.UUID, from, to models.OrderStatus) error {
	res := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}
