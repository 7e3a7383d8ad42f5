package controllers

import (
	"errors"

	"github.com/samber/lo"

	"github.com/shashiranjanraj/duka/app/models"
	"github.com/shashiranjanraj/duka/app/services"
	"github.com/shashiranjanraj/duka/pkg/ctx"
)

const relatedCount = 4

type CatalogController struct {
	catalog *services.CatalogService
}

func NewCatalogController(catalog *services.CatalogService) *CatalogController {
	return &CatalogController{catalog: catalog}
}

// Home returns the storefront landing sections.
func (h *CatalogController) Home(c *ctx.Context) {
	best, err := h.catalog.BestSellers(c.Context())
	if err != nil {
		c.InternalError(err)
		return
	}
	featured, err := h.catalog.Featured(c.Context())
	if err != nil {
		c.InternalError(err)
		return
	}
	categories, err := h.catalog.Categories(c.Context())
	if err != nil {
		c.InternalError(err)
		return
	}
	c.Success(map[string]any{
		"best_sellers": best,
		"featured":     featured,
		"categories":   categories,
	})
}

func (h *CatalogController) Index(c *ctx.Context) {
	products, err := h.catalog.All(c.Context())
	if err != nil {
		c.InternalError(err)
		return
	}
	c.Success(products)
}

// Show returns one product plus up to four others from its category.
func (h *CatalogController) Show(c *ctx.Context) {
	p, err := h.catalog.FindByID(c.Context(), c.Param("id"))
	if errors.Is(err, services.ErrProductNotFound) {
		c.NotFound("Product not found")
		return
	}
	if err != nil {
		c.InternalError(err)
		return
	}

	siblings, err := h.catalog.ByCategory(c.Context(), p.Category)
	if err != nil {
		c.InternalError(err)
		return
	}
	related := lo.Filter(siblings, func(o models.Product, _ int) bool { return o.ID != p.ID })
	if len(related) > relatedCount {
		related = related[:relatedCount]
	}

	c.Success(map[string]any{"product": p, "related": related})
}

// Category resolves a slug like "home-living" to its products.
func (h *CatalogController) Category(c *ctx.Context) {
	slug := c.Param("category")
	products, err := h.catalog.CategoryBySlug(c.Context(), slug)
	if err != nil {
		c.InternalError(err)
		return
	}
	c.Success(map[string]any{
		"category": services.CategoryTitle(slug),
		"products": products,
	})
}

func (h *CatalogController) Search(c *ctx.Context) {
	products, err := h.catalog.Search(c.Context(), c.Query("q"))
	if err != nil {
		c.InternalError(err)
		return
	}
	c.Success(products)
}
