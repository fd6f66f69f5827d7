package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type CartService struct {
	Repo *repo.GormRepo
}

type CartLine struct {
	ItemID    uuid.UUID       `json:"item_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartView struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Items     []CartLine `json:"items"`
	ItemCount int        `json:"item_count"`
	Totals
}

func (s *CartService) view(ctx context.Context, cart *models.Cart) (*CartView, error) {
	ids := make([]uuid.UUID, len(cart.Items))
	for i, it := range cart.Items {
		ids[i] = it.ProductID
	}
	products, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	v := &CartView{
		ID:     cart.ID,
		UserID: cart.UserID,
		Items:  make([]CartLine, 0, len(cart.Items)),
		Totals: ComputeTotals(cart.Items),
	}
	for _, it := range cart.Items {
		v.Items = append(v.Items, CartLine{
			ItemID:    it.ID,
			ProductID: it.ProductID,
			Name:      names[it.ProductID],
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))),
		})
		v.ItemCount += it.Quantity
	}
	return v, nil
}

func (s *CartService) reload(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	cart, err := s.Repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// existingCart loads the user's cart without creating one.
func (s *CartService) existingCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.Repo.FindCart(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("cart %w", ErrNotFound)
	}
	return cart, err
}

func checkStock(p *models.Product, qty int) error {
	if p.Stock < qty {
		return &StockError{ProductID: p.ID, Name: p.Name, Available: p.Stock, Requested: qty}
	}
	return nil
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	return s.reload(ctx, userID)
}

// AddItem adds qty units of a product. A repeat add merges into the existing
// line and moves its unit price to the product's current price.
func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID, qty int) (*CartView, error) {
	if productID == uuid.Nil {
		return nil, invalid("product_id required", "product_id")
	}
	if qty < 1 {
		return nil, invalid("quantity must be at least 1", "quantity")
	}

	p, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, productNotFound(err, productID)
	}
	if !p.IsAvailable {
		return nil, fmt.Errorf("%w: %s is not available", ErrProductNotFound, p.Name)
	}
	if err := checkStock(p, qty); err != nil {
		return nil, err
	}

	cart, err := s.Repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Repo.UpsertCartItem(ctx, cart.ID, p.ID, qty, p.Price); err != nil {
		return nil, err
	}
	return s.reload(ctx, userID)
}

func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, qty int) (*CartView, error) {
	if qty < 1 {
		return nil, invalid("quantity must be at least 1", "quantity")
	}

	cart, err := s.existingCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, err := s.Repo.GetCartItem(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart item %w: %s", ErrNotFound, itemID)
		}
		return nil, err
	}

	p, err := s.Repo.GetProduct(ctx, item.ProductID)
	if err != nil {
		return nil, productNotFound(err, item.ProductID)
	}
	if err := checkStock(p, qty); err != nil {
		return nil, err
	}

	if err := s.Repo.SetCartItemQuantity(ctx, cart.ID, itemID, qty); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart item %w: %s", ErrNotFound, itemID)
		}
		return nil, err
	}
	return s.reload(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartView, error) {
	cart, err := s.existingCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.DeleteCartItem(ctx, cart.ID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart item %w: %s", ErrNotFound, itemID)
		}
		return nil, err
	}
	return s.reload(ctx, userID)
}

func (s *CartService) RemoveProduct(ctx context.Context, userID, productID uuid.UUID) (*CartView, error) {
	cart, err := s.existingCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.DeleteCartProduct(ctx, cart.ID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w in cart: %s", ErrProductNotFound, productID)
		}
		return nil, err
	}
	return s.reload(ctx, userID)
}

// Clear empties the cart; clearing an empty cart is not an error.
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	cart, err := s.Repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.ClearCart(ctx, cart.ID); err != nil {
		return nil, err
	}
	return s.reload(ctx, userID)
}
