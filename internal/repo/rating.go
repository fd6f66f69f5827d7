package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

// RateProduct stores the user's rating, replacing an earlier one, and
// recomputes the product's average in the same transaction.
func (r *GormRepo) RateProduct(ctx context.Context, rating *models.ProductRating) (*models.Product, error) {
	var prod models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", rating.ProductID).First(&prod).Error; err != nil {
			return err
		}

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "review", "updated_at"}),
		}).Create(rating).Error
		if err != nil {
			return err
		}

		var agg struct {
			Count int64
			Avg   float64
		}
		err = tx.Model(&models.ProductRating{}).
			Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS avg").
			Where("product_id = ?", rating.ProductID).
			Scan(&agg).Error
		if err != nil {
			return err
		}

		prod.AverageRating = decimal.NewFromFloat(agg.Avg).Round(2)
		prod.RatingCount = int(agg.Count)
		return tx.Model(&models.Product{}).
			Where("id = ?", prod.ID).
			Updates(map[string]any{
				"average_rating": prod.AverageRating,
				"rating_count":   prod.RatingCount,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &prod, nil
}

func (r *GormRepo) GetRating(ctx context.Context, productID, userID uuid.UUID) (*models.ProductRating, error) {
	var rating models.ProductRating
	err := r.DB.WithContext(ctx).
		Where("product_id = ? AND user_id = ?", productID, userID).
		First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}
