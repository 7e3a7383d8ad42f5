package requests

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/duka/app/services"
)

// ProductForm is the multipart admin form for creating or editing a
// product. Images arrive as files under "images" or "image".
type ProductForm struct {
	Name          string   `form:"name"           validate:"required,notblank,max=200"`
	Category      string   `form:"category"       validate:"required,notblank,max=100"`
	Price         string   `form:"price"          validate:"required,decimal"`
	Description   string   `form:"description"    validate:"max=5000"`
	InStock       string   `form:"in_stock"       validate:"omitempty,oneof=true false on 1 0"`
	Sizes         []string `form:"sizes"`
	Colors        []string `form:"colors"`
	RemovedImages string   `form:"removed_images"`
}

// Input converts the validated form into the service input.
func (f ProductForm) Input() services.ProductInput {
	var removed []string
	for _, img := range strings.Split(f.RemovedImages, ",") {
		if img = strings.TrimSpace(img); img != "" {
			removed = append(removed, img)
		}
	}
	inStock := f.InStock == "true" || f.InStock == "on" || f.InStock == "1"
	return services.ProductInput{
		Name:          f.Name,
		Category:      f.Category,
		Price:         decimal.RequireFromString(strings.TrimSpace(f.Price)),
		Description:   f.Description,
		InStock:       inStock,
		Sizes:         f.Sizes,
		Colors:        f.Colors,
		RemovedImages: removed,
	}
}
