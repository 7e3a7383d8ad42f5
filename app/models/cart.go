package models

import (
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/duka/pkg/money"
)

// CartLine is one product's entry in a session cart. Name, price, image and
// category are copied from the catalog when the product is first added and
// are not refreshed afterwards.
type CartLine struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
}

// NewCartLine snapshots p into a line with quantity 1.
func NewCartLine(p Product) CartLine {
	return CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Image:     p.Image,
		Category:  p.Category,
		Quantity:  1,
	}
}

// Subtotal is UnitPrice * Quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return money.Times(l.UnitPrice, l.Quantity)
}

// CartSummary is the count/total pair every cart endpoint returns.
type CartSummary struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}
