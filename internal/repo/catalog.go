package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type ProductFilter struct {
	Category      string
	Search        string
	Sort          string
	AvailableOnly bool
}

var productOrder = map[string]string{
	transport.SortNewest:    "created_at DESC, id ASC",
	transport.SortPriceAsc:  "price ASC, id ASC",
	transport.SortPriceDesc: "price DESC, id ASC",
	transport.SortPopular:   "sales_count DESC, id ASC",
	transport.SortRating:    "average_rating DESC, rating_count DESC, id ASC",
}

func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(q))) + "%"
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product := models.Product{}
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductsByIDs keeps the order of ids and skips ids with no row.
func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	var found []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	items := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			items = append(items, p)
		}
	}
	return items, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter, offset, limit int) (int64, []models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.AvailableOnly {
		q = q.Where("is_available = ?", true)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := likePattern(s)
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, p, p)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	order, ok := productOrder[f.Sort]
	if !ok {
		order = productOrder[transport.SortNewest]
	}

	items := make([]models.Product, 0, limit)
	if err := q.Order(order).Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// SearchProducts is the database fallback used when no search index is configured.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	return r.ListProducts(ctx, ProductFilter{Search: q, Sort: transport.SortPopular}, offset, limit)
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return nil, err
	}
	return prod, nil
}

func (r *GormRepo) PatchProduct(ctx context.Context, req transport.PatchProductRequest, id uuid.UUID) (*models.Product, error) {
	var prod models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&prod).Error; err != nil {
			return err
		}

		if req.Name != nil {
			prod.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			prod.Description = *req.Description
		}
		if req.Category != nil {
			prod.Category = *req.Category
		}
		if req.Price != nil {
			prod.Price = req.Price.Round(2)
		}
		if req.Stock != nil {
			prod.Stock = *req.Stock
		}
		if req.IsAvailable != nil {
			prod.IsAvailable = *req.IsAvailable
		}
		if req.Ingredients != nil {
			prod.Ingredients = models.StringList(*req.Ingredients)
		}
		if req.Allergens != nil {
			prod.Allergens = models.StringList(*req.Allergens)
		}
		prod.UpdatedAt = time.Now().UTC()

		return tx.Omit("average_rating", "rating_count").Save(&prod).Error
	})
	if err != nil {
		return nil, err
	}
	return &prod, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// decrementStock takes qty units if and only if that many are on hand.
func decrementStock(tx *gorm.DB, productID uuid.UUID, qty int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Updates(map[string]any{
			"stock":       gorm.Expr("stock - ?", qty),
			"sales_count": gorm.Expr("sales_count + ?", qty),
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &ShortageError{ProductID: productID, Requested: qty}
	}
	return nil
}

// restoreStock returns qty units and walks sales_count back, floored at zero.
func restoreStock(tx *gorm.DB, productID uuid.UUID, qty int) error {
	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"stock":       gorm.Expr("stock + ?", qty),
			"sales_count": gorm.Expr("CASE WHEN sales_count > ? THEN sales_count - ? ELSE 0 END", qty, qty),
			"updated_at":  time.Now().UTC(),
		}).Error
}
