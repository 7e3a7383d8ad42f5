package kernel

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/duka/app/models"
	"github.com/shashiranjanraj/duka/app/services"
	"github.com/shashiranjanraj/duka/pkg/event"
	"github.com/shashiranjanraj/duka/pkg/logger"
	"github.com/shashiranjanraj/duka/pkg/money"
	"github.com/shashiranjanraj/duka/pkg/sse"
)

// OrderNotice is what the admin order feed receives for each placed order.
type OrderNotice struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customer_name"`
	Items        int             `json:"items"`
	Total        decimal.Decimal `json:"total"`
	TotalDisplay string          `json:"total_display"`
	CreatedAt    time.Time       `json:"created_at"`
}

// RegisterListeners attaches the audit log listeners to bus and, when feed
// is non-nil, forwards placed orders to it.
func RegisterListeners(bus *event.Bus, feed *sse.Hub) {
	bus.Listen(event.OrderPlaced, func(ctx context.Context, payload interface{}) {
		order, ok := payload.(models.Order)
		if !ok {
			return
		}
		logger.WithCtx(ctx).Info("order placed",
			"order_id", order.ID,
			"items", order.ItemCount(),
			"total", money.Format(order.Total),
		)
		if feed != nil {
			feed.Publish(event.OrderPlaced, OrderNotice{
				ID:           order.ID,
				CustomerName: order.CustomerName,
				Items:        order.ItemCount(),
				Total:        order.Total,
				TotalDisplay: money.Format(order.Total),
				CreatedAt:    order.CreatedAt,
			})
		}
	})

	bus.Listen(event.CartUpdated, func(ctx context.Context, payload interface{}) {
		u, ok := payload.(services.CartUpdated)
		if !ok {
			return
		}
		logger.WithCtx(ctx).Debug("cart updated", "op", u.Op, "count", u.Summary.Count)
	})
}
