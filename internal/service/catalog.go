package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CatalogService struct {
	Repo *repo.GormRepo
	// Index is optional; without it search runs against the database.
	Index  ProductIndex
	Events EventPublisher
}

func productNotFound(err error, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return err
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, productNotFound(err, id)
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilter, offset, limit int) (int64, []models.Product, error) {
	switch f.Sort {
	case "":
		f.Sort = transport.SortNewest
	case transport.SortNewest, transport.SortPriceAsc, transport.SortPriceDesc, transport.SortPopular, transport.SortRating:
	default:
		return 0, nil, invalid("unknown sort "+f.Sort, "sort")
	}
	if f.Category != "" && !models.ValidCategory(f.Category) {
		return 0, nil, invalid("unknown category "+f.Category, "category")
	}
	return s.Repo.ListProducts(ctx, f, offset, limit)
}

func (s *CatalogService) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, []models.Product{}, nil
	}

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			items, err := s.Repo.GetProductsByIDs(ctx, ids)
			if err != nil {
				return 0, nil, err
			}
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("search_index_unavailable", "svc", "catalog.search", "error", err)
	}

	return s.Repo.SearchProducts(ctx, q, offset, limit)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if err := validate.Struct(req); err != nil {
		return nil, fromValidator(err)
	}
	if !req.Price.IsPositive() {
		return nil, invalid("price must be greater than zero", "price")
	}
	if !models.ValidCategory(req.Category) {
		return nil, invalid("unknown category "+req.Category, "category")
	}

	p := models.NewProduct(req.Name, req.Description, req.Category, req.Price, req.Stock)
	if req.IsAvailable != nil {
		p.IsAvailable = *req.IsAvailable
	}
	p.Ingredients = models.StringList(req.Ingredients)
	p.Allergens = models.StringList(req.Allergens)

	created, err := s.Repo.CreateProduct(ctx, p)
	if err != nil {
		return nil, err
	}

	s.afterChange(ctx, EventProductCreated, created)
	return created, nil
}

func validatePatch(req transport.PatchProductRequest) error {
	var fields []string
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		fields = append(fields, "name")
	}
	if req.Category != nil && !models.ValidCategory(*req.Category) {
		fields = append(fields, "category")
	}
	if req.Price != nil && !req.Price.IsPositive() {
		fields = append(fields, "price")
	}
	if req.Stock != nil && *req.Stock < 0 {
		fields = append(fields, "stock")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, req transport.PatchProductRequest, id uuid.UUID) (*models.Product, error) {
	if err := validatePatch(req); err != nil {
		return nil, err
	}

	p, err := s.Repo.PatchProduct(ctx, req, id)
	if err != nil {
		return nil, productNotFound(err, id)
	}

	s.afterChange(ctx, EventProductUpdated, p)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return productNotFound(err, id)
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_unindex_failed", "svc", "catalog.delete", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicProductEvents, id.String(), ProductEvent{
		Type:      EventProductDeleted,
		ProductID: id,
		At:        time.Now().UTC(),
	})
	return nil
}

const maxReviewLen = 2000

// RateProduct records userID's 1-5 rating of a product. A second rating by
// the same user replaces the first.
func (s *CatalogService) RateProduct(ctx context.Context, userID, productID uuid.UUID, rating int, review string) (*models.Product, error) {
	if rating < 1 || rating > 5 {
		return nil, invalid("rating must be between 1 and 5", "rating")
	}
	review = strings.TrimSpace(review)
	if utf8.RuneCountInString(review) > maxReviewLen {
		return nil, invalid(fmt.Sprintf("review is longer than %d characters", maxReviewLen), "review")
	}

	p, err := s.Repo.RateProduct(ctx, models.NewProductRating(productID, userID, rating, review))
	if err != nil {
		return nil, productNotFound(err, productID)
	}

	s.afterChange(ctx, EventProductRated, p)
	return p, nil
}

func (s *CatalogService) afterChange(ctx context.Context, typ string, p *models.Product) {
	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, p); err != nil {
			logging.FromContext(ctx).Warn("search_index_failed", "svc", "catalog."+typ, "product_id", p.ID, "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicProductEvents, p.ID.String(), ProductEvent{
		Type:      typ,
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		At:        time.Now().UTC(),
	})
}
