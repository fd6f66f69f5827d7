package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/Skotchmaster/storefront/internal/models"
)

func TestComputeTotals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                           string
		items                          []models.CartItem
		subtotal, tax, shipping, total string
	}{
		{
			name:     "two cakes",
			items:    []models.CartItem{{UnitPrice: dec("20"), Quantity: 2}},
			subtotal: "40.00", tax: "4.00", shipping: "5.00", total: "49.00",
		},
		{
			name:     "empty cart still ships",
			items:    nil,
			subtotal: "0.00", tax: "0.00", shipping: "5.00", total: "5.00",
		},
		{
			name:     "tax rounds half up",
			items:    []models.CartItem{{UnitPrice: dec("3.33"), Quantity: 3}},
			subtotal: "9.99", tax: "1.00", shipping: "5.00", total: "15.99",
		},
		{
			name: "mixed lines",
			items: []models.CartItem{
				{UnitPrice: dec("4.25"), Quantity: 4},
				{UnitPrice: dec("12.10"), Quantity: 1},
			},
			subtotal: "29.10", tax: "2.91", shipping: "5.00", total: "37.01",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ComputeTotals(tt.items)
			assert.Equal(t, tt.subtotal, got.Subtotal.StringFixed(2))
			assert.Equal(t, tt.tax, got.Tax.StringFixed(2))
			assert.Equal(t, tt.shipping, got.Shipping.StringFixed(2))
			assert.Equal(t, tt.total, got.Total.StringFixed(2))
		})
	}
}

func TestComputeTotals_Property(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "lines")
		items := make([]models.CartItem, n)
		want := decimal.Zero
		for i := range items {
			cents := rapid.Int64Range(1, 10_000_000).Draw(t, "cents")
			qty := rapid.IntRange(1, 50).Draw(t, "qty")
			items[i] = models.CartItem{UnitPrice: decimal.New(cents, -2), Quantity: qty}
			want = want.Add(decimal.New(cents*int64(qty), -2))
		}

		got := ComputeTotals(items)
		again := ComputeTotals(items)

		if !got.Total.Equal(again.Total) || !got.Tax.Equal(again.Tax) {
			t.Fatalf("not deterministic: %v vs %v", got, again)
		}
		if !got.Subtotal.Equal(want) {
			t.Fatalf("subtotal %s, want %s", got.Subtotal, want)
		}
		expected := got.Subtotal.Add(got.Subtotal.Mul(dec("0.10"))).Add(dec("5.00")).Round(2)
		if !got.Total.Equal(expected) {
			t.Fatalf("total %s, want %s", got.Total, expected)
		}
		if !got.Total.Equal(got.Subtotal.Add(got.Tax).Add(got.Shipping)) {
			t.Fatalf("total %s is not the sum of its parts", got.Total)
		}
	})
}
