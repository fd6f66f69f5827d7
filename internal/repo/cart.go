package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

func itemsByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *GormRepo) FindCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).
		Preload("Items", itemsByPosition).
		Where("user_id = ?", userID).
		First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetOrCreateCart returns the user's cart, creating an empty one on first use.
func (r *GormRepo) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := r.FindCart(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := models.NewCart(userID)
	if err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Omit("Items").
		Create(fresh).Error; err != nil {
		return nil, err
	}
	return r.FindCart(ctx, userID)
}

func (r *GormRepo) GetCartItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpsertCartItem adds qty to an existing line for the product, refreshing its
// unit price, or appends a new line at the end of the cart.
func (r *GormRepo) UpsertCartItem(ctx context.Context, cartID, productID uuid.UUID, qty int, unitPrice decimal.Decimal) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("cart_id = ? AND product_id = ?", cartID, productID).
			Updates(map[string]any{
				"quantity":   gorm.Expr("quantity + ?", qty),
				"unit_price": unitPrice.Round(2),
			})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			var next int
			if err := tx.Model(&models.CartItem{}).
				Where("cart_id = ?", cartID).
				Select("COALESCE(MAX(position) + 1, 0)").
				Scan(&next).Error; err != nil {
				return err
			}
			if err := tx.Create(models.NewCartItem(cartID, productID, qty, unitPrice, next)).Error; err != nil {
				return err
			}
		}

		if err := touchCart(tx, cartID); err != nil {
			return err
		}
		return tx.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) SetCartItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, qty int) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("id = ? AND cart_id = ?", itemID, cartID).
			Update("quantity", qty)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return touchCart(tx, cartID)
	})
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	return r.deleteCartItems(ctx, cartID, "id = ? AND cart_id = ?", itemID, cartID)
}

func (r *GormRepo) DeleteCartProduct(ctx context.Context, cartID, productID uuid.UUID) error {
	return r.deleteCartItems(ctx, cartID, "product_id = ? AND cart_id = ?", productID, cartID)
}

func (r *GormRepo) deleteCartItems(ctx context.Context, cartID uuid.UUID, where string, args ...any) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where(where, args...).Delete(&models.CartItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return touchCart(tx, cartID)
	})
}

func (r *GormRepo) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return touchCart(tx, cartID)
	})
}

func touchCart(tx *gorm.DB, cartID uuid.UUID) error {
	return tx.Model(&models.Cart{}).Where("id = ?", cartID).Update("updated_at", time.Now().UTC()).Error
}
