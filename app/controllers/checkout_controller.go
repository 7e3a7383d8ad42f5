package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/duka/app/models"
	"github.com/shashiranjanraj/duka/app/requests"
	"github.com/shashiranjanraj/duka/app/services"
	"github.com/shashiranjanraj/duka/pkg/ctx"
	"github.com/shashiranjanraj/duka/pkg/logger"
	"github.com/shashiranjanraj/duka/pkg/money"
)

const (
	msgInvalidPhone = "Enter a valid phone number, e.g. 0712345678 or +254712345678."
	msgInvalidMpesa = "Enter a valid M-Pesa number, e.g. 0712345678 or +254712345678."
)

type CheckoutController struct {
	orders *services.OrderService
}

func NewCheckoutController(orders *services.OrderService) *CheckoutController {
	return &CheckoutController{orders: orders}
}

type placedOrder struct {
	models.Order
	TotalDisplay string `json:"total_display"`
}

// Place records the session cart as an order.
func (h *CheckoutController) Place(c *ctx.Context) {
	var in requests.Checkout
	if !c.BindJSON(&in) {
		return
	}

	order, err := h.orders.PlaceOrder(c.Context(), c.SessionID(), in.Customer())
	switch {
	case errors.Is(err, services.ErrInvalidPhone):
		c.ValidationError(map[string]string{"phone": msgInvalidPhone})
		return
	case errors.Is(err, services.ErrInvalidMpesaPhone):
		c.ValidationError(map[string]string{"mpesa_phone": msgInvalidMpesa})
		return
	case errors.Is(err, services.ErrEmptyCart):
		c.Error(http.StatusBadRequest, "Your cart is empty.")
		return
	case errors.Is(err, services.ErrPersistence):
		logger.WithCtx(c.Context()).Error("order not saved", "error", err)
		c.Error(http.StatusInternalServerError, "Your order could not be saved. Please try again.")
		return
	case err != nil:
		c.InternalError(err)
		return
	}

	c.Created(placedOrder{Order: order, TotalDisplay: money.Format(order.Total)})
}
