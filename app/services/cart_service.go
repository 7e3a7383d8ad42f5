package services

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/duka/app/models"
	"github.com/shashiranjanraj/duka/app/repositories"
	"github.com/shashiranjanraj/duka/pkg/event"
	"github.com/shashiranjanraj/duka/pkg/metrics"
	"github.com/shashiranjanraj/duka/pkg/money"
)

// CartUpdated is the payload of event.CartUpdated.
type CartUpdated struct {
	SessionID string
	Op        string
	Summary   models.CartSummary
}

const lockStripes = 64

// CartService is the per-session cart ledger. Lines keep insertion order,
// there is at most one line per product and no line has quantity < 1.
// The only errors it returns come from the CartStore.
type CartService struct {
	store  repositories.CartStore
	events *event.Bus

	// locks serializes load-modify-save cycles of one session.
	locks [lockStripes]sync.Mutex
}

func NewCartService(store repositories.CartStore, events *event.Bus) *CartService {
	return &CartService{store: store, events: events}
}

func (s *CartService) lock(sessionID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	m := &s.locks[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}

// mutate runs fn over the session's lines and saves the result.
func (s *CartService) mutate(ctx context.Context, sessionID, op string, fn func([]models.CartLine) []models.CartLine) error {
	unlock := s.lock(sessionID)
	defer unlock()

	lines, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	lines = fn(lines)
	if err := s.store.Save(ctx, sessionID, lines); err != nil {
		return err
	}

	metrics.CartMutations.WithLabelValues(op).Inc()
	s.events.Fire(ctx, event.CartUpdated, CartUpdated{
		SessionID: sessionID,
		Op:        op,
		Summary:   summarize(lines),
	})
	return nil
}

// AddItem increments the product's line or appends a new one with quantity
// 1, snapshotting the product's name, price, image and category.
func (s *CartService) AddItem(ctx context.Context, sessionID string, p models.Product) error {
	return s.mutate(ctx, sessionID, "add", func(lines []models.CartLine) []models.CartLine {
		if _, i, ok := lo.FindIndexOf(lines, func(l models.CartLine) bool { return l.ProductID == p.ID }); ok {
			lines[i].Quantity++
			return lines
		}
		return append(lines, models.NewCartLine(p))
	})
}

// RemoveItem deletes the product's line. Unknown ids are a no-op.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID string) error {
	return s.mutate(ctx, sessionID, "remove", func(lines []models.CartLine) []models.CartLine {
		return removeLine(lines, productID)
	})
}

// UpdateQuantity sets the quantity of an existing line. quantity <= 0
// removes the line; a missing line is not created.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) error {
	return s.mutate(ctx, sessionID, "update", func(lines []models.CartLine) []models.CartLine {
		if quantity <= 0 {
			return removeLine(lines, productID)
		}
		if _, i, ok := lo.FindIndexOf(lines, func(l models.CartLine) bool { return l.ProductID == productID }); ok {
			lines[i].Quantity = quantity
		}
		return lines
	})
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	unlock := s.lock(sessionID)
	defer unlock()

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	metrics.CartMutations.WithLabelValues("clear").Inc()
	s.events.Fire(ctx, event.CartUpdated, CartUpdated{SessionID: sessionID, Op: "clear", Summary: summarize(nil)})
	return nil
}

// Cart returns a copy of the lines in insertion order.
func (s *CartService) Cart(ctx context.Context, sessionID string) ([]models.CartLine, error) {
	lines, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return append([]models.CartLine{}, lines...), nil
}

// TotalCount is the sum of line quantities.
func (s *CartService) TotalCount(ctx context.Context, sessionID string) (int, error) {
	lines, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return totalCount(lines), nil
}

// TotalPrice is the exact decimal sum of unit price × quantity.
func (s *CartService) TotalPrice(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	lines, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return money.Zero, err
	}
	return totalPrice(lines), nil
}

// ItemCount returns the quantity of one product, 0 if absent.
func (s *CartService) ItemCount(ctx context.Context, sessionID, productID string) (int, error) {
	lines, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	line, ok := lo.Find(lines, func(l models.CartLine) bool { return l.ProductID == productID })
	if !ok {
		return 0, nil
	}
	return line.Quantity, nil
}

// Summary returns count and total from one read of the cart.
func (s *CartService) Summary(ctx context.Context, sessionID string) (models.CartSummary, error) {
	lines, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return models.CartSummary{}, err
	}
	return summarize(lines), nil
}

func removeLine(lines []models.CartLine, productID string) []models.CartLine {
	return lo.Reject(lines, func(l models.CartLine, _ int) bool { return l.ProductID == productID })
}

func totalCount(lines []models.CartLine) int {
	return lo.SumBy(lines, func(l models.CartLine) int { return l.Quantity })
}

func totalPrice(lines []models.CartLine) decimal.Decimal {
	total := money.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func summarize(lines []models.CartLine) models.CartSummary {
	return models.CartSummary{Count: totalCount(lines), Total: totalPrice(lines)}
}
