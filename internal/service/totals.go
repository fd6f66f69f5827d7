package service

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

var (
	TaxRate      = decimal.RequireFromString("0.10")
	ShippingFlat = decimal.RequireFromString("5.00")
)

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals prices a set of line items. It is shared by the cart view
// and checkout so both always agree.
func ComputeTotals(items []models.CartItem) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(TaxRate).Round(2)

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: ShippingFlat,
		Total:    subtotal.Add(tax).Add(ShippingFlat),
	}
}

func (t Totals) Amounts() models.Amounts {
	return models.Amounts{Subtotal: t.Subtotal, Tax: t.Tax, Shipping: t.Shipping, Total: t.Total}
}
