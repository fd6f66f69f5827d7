package transport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortPopular   = "popular"
	SortRating    = "rating"
)

type CreateProductRequest struct {
	Name        string          `json:"name"        validate:"required,max=200"`
	Description string          `json:"description" validate:"required"`
	Category    string          `json:"category"    validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"       validate:"gte=0"`
	IsAvailable *bool           `json:"is_available"`
	Ingredients []string        `json:"ingredients"`
	Allergens   []string        `json:"allergens"`
}

// PatchProductRequest lists every field an admin may change; nil means keep.
type PatchProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	IsAvailable *bool            `json:"is_available"`
	Ingredients *[]string        `json:"ingredients"`
	Allergens   *[]string        `json:"allergens"`
}

type RateProductRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CardDetails struct {
	Number         string `json:"card_number"`
	CardholderName string `json:"cardholder_name"`
	Expiry         string `json:"expiry_date"`
	CVV            string `json:"cvv"`
}

type CheckoutRequest struct {
	PaymentMethod   string       `json:"payment_method"   validate:"required,oneof=credit_card paypal cash_on_delivery"`
	ShippingAddress string       `json:"shipping_address" validate:"required"`
	Name            string       `json:"name"             validate:"required"`
	Email           string       `json:"email"            validate:"required,email"`
	Phone           string       `json:"phone"`
	OrderNotes      string       `json:"order_notes"      validate:"max=1000"`
	TermsAccepted   bool         `json:"terms_accepted"   validate:"required"`
	Card            *CardDetails `json:"card,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

func NewPageMeta(page, offset, limit int, total int64) PageMeta {
	if page < 1 {
		page = 1
	}
	return PageMeta{
		Page:       page,
		Size:       limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
		HasPrev:    page > 1,
		HasNext:    int64(offset+limit) < total,
	}
}
