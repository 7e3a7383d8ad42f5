package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/duka/app/models"
	"github.com/shashiranjanraj/duka/app/repositories"
	"github.com/shashiranjanraj/duka/pkg/event"
	"github.com/shashiranjanraj/duka/pkg/logger"
	"github.com/shashiranjanraj/duka/pkg/metrics"
	"github.com/shashiranjanraj/duka/pkg/phone"
)

// OrderOptions tunes the order recorder.
type OrderOptions struct {
	Phone phone.Normalizer
	// Strict returns ErrPersistence and keeps the cart when the order log
	// write fails. Otherwise the failure is only logged and counted.
	Strict bool
	Now    func() time.Time
}

// OrderService turns a session's cart into an order record.
type OrderService struct {
	carts  *CartService
	log    repositories.OrderLog
	events *event.Bus
	opts   OrderOptions
}

func NewOrderService(carts *CartService, log repositories.OrderLog, events *event.Bus, opts OrderOptions) *OrderService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &OrderService{carts: carts, log: log, events: events, opts: opts}
}

// PlaceOrder validates the customer's phone numbers, snapshots the cart
// into an order, appends it to the order log and clears the cart. Nothing
// is written and the cart is untouched when validation fails.
func (s *OrderService) PlaceOrder(ctx context.Context, sessionID string, c models.Customer) (models.Order, error) {
	c = trimCustomer(c)
	log := logger.WithCtx(ctx)

	phoneNo, err := s.opts.Phone.Normalize(c.Phone)
	if err != nil {
		metrics.OrderRejected.WithLabelValues("invalid_phone").Inc()
		return models.Order{}, fmt.Errorf("%w: %w", ErrInvalidPhone, err)
	}

	mpesa := ""
	if c.MpesaPhone != "" {
		if mpesa, err = s.opts.Phone.Normalize(c.MpesaPhone); err != nil {
			metrics.OrderRejected.WithLabelValues("invalid_mpesa_phone").Inc()
			return models.Order{}, fmt.Errorf("%w: %w", ErrInvalidMpesaPhone, err)
		}
	}

	unlock := s.carts.lock(sessionID)
	defer unlock()

	lines, err := s.carts.store.Load(ctx, sessionID)
	if err != nil {
		return models.Order{}, err
	}
	if len(lines) == 0 {
		metrics.OrderRejected.WithLabelValues("empty_cart").Inc()
		return models.Order{}, ErrEmptyCart
	}

	now := s.opts.Now().UTC()
	order := models.Order{
		ID:           NewOrderID(now),
		CustomerName: c.Name,
		Email:        c.Email,
		Phone:        phoneNo,
		MpesaPhone:   mpesa,
		Address:      c.Address,
		Notes:        c.Notes,
		Items:        lines,
		Total:        totalPrice(lines),
		CreatedAt:    now,
	}

	if err := s.log.Append(ctx, order); err != nil {
		metrics.OrderLogFailures.WithLabelValues(s.log.Driver()).Inc()
		log.Error("order log append failed", "order_id", order.ID, "driver", s.log.Driver(), "error", err)
		if s.opts.Strict {
			return models.Order{}, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
	}

	if err := s.carts.store.Delete(ctx, sessionID); err != nil {
		log.Warn("cart not cleared after order", "order_id", order.ID, "error", err)
	}

	metrics.OrdersPlaced.Inc()
	metrics.OrderValue.Observe(order.Total.InexactFloat64())
	s.events.Fire(ctx, event.OrderPlaced, order)
	return order, nil
}

// ListOrders returns the order log oldest first.
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.log.All(ctx)
}

// NewOrderID builds "ORD-<UTC yyyymmddhhmmss>-<8 hex>".
func NewOrderID(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "ORD-" + t.UTC().Format("20060102150405") + "-" + suffix
}

func trimCustomer(c models.Customer) models.Customer {
	return models.Customer{
		Name:       strings.TrimSpace(c.Name),
		Email:      strings.TrimSpace(c.Email),
		Phone:      strings.TrimSpace(c.Phone),
		MpesaPhone: strings.TrimSpace(c.MpesaPhone),
		Address:    strings.TrimSpace(c.Address),
		Notes:      strings.TrimSpace(c.Notes),
	}
}
