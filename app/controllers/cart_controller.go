package controllers

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/duka/app/models"
	"github.com/shashiranjanraj/duka/app/requests"
	"github.com/shashiranjanraj/duka/app/services"
	"github.com/shashiranjanraj/duka/pkg/ctx"
	"github.com/shashiranjanraj/duka/pkg/money"
)

// CartController serves the session cart endpoints.
type CartController struct {
	carts   *services.CartService
	catalog *services.CatalogService
}

func NewCartController(carts *services.CartService, catalog *services.CatalogService) *CartController {
	return &CartController{carts: carts, catalog: catalog}
}

// cartResult is the body every cart mutation returns.
type cartResult struct {
	Success   bool            `json:"success"`
	CartCount int             `json:"cart_count"`
	CartTotal decimal.Decimal `json:"cart_total"`
}

type cartLineView struct {
	models.CartLine
	Subtotal        decimal.Decimal `json:"subtotal"`
	SubtotalDisplay string          `json:"subtotal_display"`
}

type cartView struct {
	Items           []cartLineView  `json:"items"`
	Count           int             `json:"count"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	SubtotalDisplay string          `json:"subtotal_display"`
}

// Show returns the cart lines with per-line and overall subtotals.
func (h *CartController) Show(c *ctx.Context) {
	lines, err := h.carts.Cart(c.Context(), c.SessionID())
	if err != nil {
		c.InternalError(err)
		return
	}

	view := cartView{Items: make([]cartLineView, 0, len(lines)), Subtotal: money.Zero}
	for _, l := range lines {
		sub := l.Subtotal()
		view.Items = append(view.Items, cartLineView{CartLine: l, Subtotal: sub, SubtotalDisplay: money.Format(sub)})
		view.Count += l.Quantity
		view.Subtotal = view.Subtotal.Add(sub)
	}
	view.SubtotalDisplay = money.Format(view.Subtotal)
	c.Success(view)
}

// Count returns {count, total} for the header badge.
func (h *CartController) Count(c *ctx.Context) {
	summary, err := h.carts.Summary(c.Context(), c.SessionID())
	if err != nil {
		c.InternalError(err)
		return
	}
	c.Success(summary)
}

func (h *CartController) Add(c *ctx.Context) {
	var in requests.AddToCart
	if !c.BindJSON(&in) {
		return
	}

	p, err := h.catalog.FindByID(c.Context(), in.ProductID.String())
	if errors.Is(err, services.ErrProductNotFound) {
		c.NotFound("Product not found")
		return
	}
	if err != nil {
		c.InternalError(err)
		return
	}

	if err := h.carts.AddItem(c.Context(), c.SessionID(), p); err != nil {
		c.InternalError(err)
		return
	}
	h.result(c)
}

func (h *CartController) Remove(c *ctx.Context) {
	var in requests.RemoveFromCart
	if !c.BindJSON(&in) {
		return
	}
	if err := h.carts.RemoveItem(c.Context(), c.SessionID(), in.ProductID.String()); err != nil {
		c.InternalError(err)
		return
	}
	h.result(c)
}

// UpdateQuantity sets a line's quantity; zero or less removes the line and
// an unknown product is ignored.
func (h *CartController) UpdateQuantity(c *ctx.Context) {
	in := requests.NewUpdateQuantity()
	if !c.BindJSON(&in) {
		return
	}
	if err := h.carts.UpdateQuantity(c.Context(), c.SessionID(), in.ProductID.String(), in.Quantity); err != nil {
		c.InternalError(err)
		return
	}
	h.result(c)
}

func (h *CartController) Clear(c *ctx.Context) {
	if err := h.carts.Clear(c.Context(), c.SessionID()); err != nil {
		c.InternalError(err)
		return
	}
	h.result(c)
}

func (h *CartController) result(c *ctx.Context) {
	summary, err := h.carts.Summary(c.Context(), c.SessionID())
	if err != nil {
		c.InternalError(err)
		return
	}
	c.Success(cartResult{Success: true, CartCount: summary.Count, CartTotal: summary.Total})
}
