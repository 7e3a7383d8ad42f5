package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultImage is used for products saved without an uploaded image.
const DefaultImage = "https://images.unsplash.com/photo-1578662996442-48f60103fc96?w=200&h=200&fit=crop&crop=center"

// Product is one record of the JSON catalog.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Images      []string        `json:"images,omitempty"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	InStock     *bool           `json:"in_stock,omitempty"`
	Sizes       []string        `json:"sizes,omitempty"`
	Colors      []string        `json:"colors,omitempty"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
}

// Available reports stock status; products without the flag are in stock.
func (p Product) Available() bool {
	return p.InStock == nil || *p.InStock
}

// Gallery returns Images, falling back to the single primary Image.
func (p Product) Gallery() []string {
	if len(p.Images) > 0 {
		return p.Images
	}
	if p.Image != "" {
		return []string{p.Image}
	}
	return nil
}
