package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"          json:"id"`
	Name        string          `gorm:"not null"                      json:"name"`
	Description string          `gorm:"not null;default:''"           json:"description"`
	Category    string          `gorm:"index;not null;default:''"     json:"category"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"   json:"price"`
	Stock       int             `gorm:"not null;default:0;check:stock >= 0"             json:"stock"`
	SalesCount  int             `gorm:"not null;default:0;check:sales_count >= 0"       json:"sales_count"`
	// AverageRating and RatingCount are maintained by rating writes only.
	AverageRating decimal.Decimal `gorm:"type:numeric(3,2);not null;default:0" json:"average_rating"`
	RatingCount   int             `gorm:"not null;default:0"                   json:"rating_count"`
	IsAvailable   bool            `gorm:"not null;default:true"         json:"is_available"`
	Ingredients   StringList      `json:"ingredients"`
	Allergens     StringList      `json:"allergens"`
	CreatedAt     time.Time       `gorm:"not null"                      json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null"                      json:"updated_at"`
}

var Categories = []string{"Cakes", "Cookies", "Ice Cream", "Pastries", "Pies", "Breads", "Desserts", "Beverages", "Other"}

func ValidCategory(c string) bool {
	return slices.Contains(Categories, c)
}

func (Product) TableName() string {
	return "products"
}

// NewProduct sets the identity and timestamps; validation belongs to the caller.
func NewProduct(name, description, category string, price decimal.Decimal, stock int) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:            uuid.New(),
		Name:          name,
		Description:   description,
		Category:      category,
		Price:         price.Round(2),
		AverageRating: decimal.Zero,
		Stock:         stock,
		IsAvailable:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ProductRating is one user's score for a product; rating again replaces it.
type ProductRating struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                                json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_rating_product_user;not null" json:"product_id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_rating_product_user;not null" json:"user_id"`
	Rating    int       `gorm:"not null;check:rating BETWEEN 1 AND 5"               json:"rating"`
	Review    string    `gorm:"not null;default:''"                                 json:"review"`
	CreatedAt time.Time `gorm:"not null"                                            json:"created_at"`
	UpdatedAt time.Time `gorm:"not null"                                            json:"updated_at"`
}

func (ProductRating) TableName() string {
	return "product_ratings"
}

func NewProductRating(productID, userID uuid.UUID, rating int, review string) *ProductRating {
	now := time.Now().UTC()
	return &ProductRating{
		ID:        uuid.New(),
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Review:    review,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"        json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `gorm:"not null"                    json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null"                    json:"updated_at"`
}

func (Cart) TableName() string {
	return "carts"
}

func NewCart(userID uuid.UUID) *Cart {
	now := time.Now().UTC()
	return &Cart{
		ID:        uuid.New(),
		UserID:    userID,
		Items:     []CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type CartItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"                            json:"id"`
	CartID    uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_cart_product;not null" json:"-"`
	ProductID uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_cart_product;not null" json:"product_id"`
	Quantity  int             `gorm:"not null;check:quantity > 0"                     json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"                     json:"unit_price"`
	Position  int             `gorm:"not null;default:0"                              json:"-"`
	CreatedAt time.Time       `gorm:"not null"                                        json:"created_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

func NewCartItem(cartID, productID uuid.UUID, quantity int, unitPrice decimal.Decimal, position int) *CartItem {
	return &CartItem{
		ID:        uuid.New(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice.Round(2),
		Position:  position,
		CreatedAt: time.Now().UTC(),
	}
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusShipped:    2,
	OrderStatusDelivered:  3,
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatusRank[s]
	return ok || s == OrderStatusCancelled
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanAdvanceTo reports whether next lies strictly ahead of s on the
// pending -> processing -> shipped -> delivered path.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	cur, ok := orderStatusRank[s]
	if !ok {
		return false
	}
	nxt, ok := orderStatusRank[next]
	if !ok {
		return false
	}
	return nxt > cur
}

type PaymentMethod string

const (
	PaymentMethodCreditCard     PaymentMethod = "credit_card"
	PaymentMethodPayPal         PaymentMethod = "paypal"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodPayPal, PaymentMethodCashOnDelivery:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type PaymentDetails struct {
	TransactionID  string     `json:"transaction_id,omitempty"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	CardLast4      string     `json:"card_last4,omitempty"`
	CardholderName string     `json:"cardholder_name,omitempty"`
	Method         string     `json:"method,omitempty"`
	RefundID       string     `json:"refund_id,omitempty"`
}

type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"           json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;index;not null"       json:"user_id"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null"    json:"subtotal"`
	Tax             decimal.Decimal `gorm:"type:numeric(12,2);not null"    json:"tax"`
	Shipping        decimal.Decimal `gorm:"type:numeric(12,2);not null"    json:"shipping"`
	FinalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null"    json:"final_amount"`
	ShippingAddress string          `gorm:"not null"                       json:"shipping_address"`
	CustomerName    string          `gorm:"not null;default:''"            json:"customer_name"`
	CustomerEmail   string          `gorm:"index;not null;default:''"      json:"customer_email"`
	CustomerPhone   string          `gorm:"not null;default:''"            json:"customer_phone"`
	OrderNotes      string          `gorm:"not null;default:''"            json:"order_notes"`
	Status          OrderStatus     `gorm:"type:varchar(16);index;not null" json:"status"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(24);not null"      json:"payment_method"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(16);not null"      json:"payment_status"`
	PaymentDetails  PaymentDetails  `gorm:"embedded;embeddedPrefix:payment_" json:"payment_details"`
	CreatedAt       time.Time       `gorm:"index;not null"                 json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null"                       json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"         json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;index;not null"     json:"-"`
	ProductID   uuid.UUID       `gorm:"type:uuid;index;not null"     json:"product_id"`
	ProductName string          `gorm:"not null;default:''"          json:"product_name"`
	Quantity    int             `gorm:"not null;check:quantity > 0"  json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"  json:"unit_price"`
	Position    int             `gorm:"not null;default:0"           json:"-"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

type Customer struct {
	Name  string
	Email string
	Phone string
}

// Amounts is the priced summary an order is created from.
type Amounts struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// NewOrder builds a pending order. FinalAmount is derived here from the
// three components and never recomputed afterwards.
func NewOrder(userID uuid.UUID, items []OrderItem, amounts Amounts, shippingAddress string, customer Customer, notes string, method PaymentMethod) *Order {
	now := time.Now().UTC()
	id := uuid.New()

	frozen := make([]OrderItem, len(items))
	for i, it := range items {
		it.ID = uuid.New()
		it.OrderID = id
		it.UnitPrice = it.UnitPrice.Round(2)
		it.Position = i
		frozen[i] = it
	}

	subtotal := amounts.Subtotal.Round(2)
	tax := amounts.Tax.Round(2)
	shipping := amounts.Shipping.Round(2)

	return &Order{
		ID:              id,
		UserID:          userID,
		Items:           frozen,
		Subtotal:        subtotal,
		Tax:             tax,
		Shipping:        shipping,
		FinalAmount:     subtotal.Add(tax).Add(shipping),
		ShippingAddress: shippingAddress,
		CustomerName:    customer.Name,
		CustomerEmail:   customer.Email,
		CustomerPhone:   customer.Phone,
		OrderNotes:      notes,
		Status:          OrderStatusPending,
		PaymentMethod:   method,
		PaymentStatus:   PaymentStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// All lists every model the storefront persists, in migration order.
func All() []any {
	return []any{&Product{}, &ProductRating{}, &Cart{}, &CartItem{}, &Order{}, &OrderItem{}}
}
