package services_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/duka/app/models"
	"github.com/shashiranjanraj/duka/app/services"
	"github.com/shashiranjanraj/duka/pkg/event"
	"github.com/shashiranjanraj/duka/pkg/phone"
)

type memoryLog struct {
	mu     sync.Mutex
	orders []models.Order
	err    error
}

func (l *memoryLog) Append(_ context.Context, o models.Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.orders = append(l.orders, o)
	return nil
}

func (l *memoryLog) All(context.Context) ([]models.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Order{}, l.orders...), nil
}

func (l *memoryLog) Driver() string              { return "memory" }
func (l *memoryLog) Close(context.Context) error { return nil }

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newOrders(t *testing.T, log *memoryLog, strict bool) (*services.OrderService, *services.CartService, *event.Bus) {
	t.Helper()
	carts, bus := newCarts(t)
	orders := services.NewOrderService(carts, log, bus, services.OrderOptions{
		Phone:  phone.Default,
		Strict: strict,
		Now:    func() time.Time { return fixedNow },
	})
	return orders, carts, bus
}

func customer(phoneNo string) models.Customer {
	return models.Customer{
		Name:    "  Wanjiku Kamau ",
		Email:   "wanjiku@example.com ",
		Phone:   phoneNo,
		Address: "Moi Avenue, Nairobi",
	}
}

func fillCart(t *testing.T, carts *services.CartService, sid string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, carts.AddItem(ctx, sid, product("1", "Sneaker", "19.99")))
	require.NoError(t, carts.UpdateQuantity(ctx, sid, "1", 3))
	require.NoError(t, carts.AddItem(ctx, sid, product("2", "Bag", "1500")))
}

func TestPlaceOrderSnapshotsCartAndClearsIt(t *testing.T) {
	log := &memoryLog{}
	orders, carts, _ := newOrders(t, log, false)
	ctx := context.Background()
	fillCart(t, carts, "s1")

	before, _ := carts.Cart(ctx, "s1")
	total, _ := carts.TotalPrice(ctx, "s1")

	c := customer("+254 712 345 678")
	c.MpesaPhone = "712345679"
	order, err := orders.PlaceOrder(ctx, "s1", c)
	require.NoError(t, err)

	assert.Equal(t, before, order.Items)
	assert.True(t, order.Total.Equal(total))
	assert.Equal(t, "1559.97", order.Total.StringFixed(2))
	assert.Equal(t, "0712345678", order.Phone)
	assert.Equal(t, "0712345679", order.MpesaPhone)
	assert.Equal(t, "Wanjiku Kamau", order.CustomerName)
	assert.Equal(t, "wanjiku@example.com", order.Email)
	assert.Equal(t, fixedNow, order.CreatedAt)
	assert.Regexp(t, regexp.MustCompile(`^ORD-20260314092653-[0-9a-f]{8}$`), order.ID)
	assert.Equal(t, 4, order.ItemCount())

	after, _ := carts.Cart(ctx, "s1")
	assert.Empty(t, after)

	logged, _ := orders.ListOrders(ctx)
	require.Len(t, logged, 1)
	assert.Equal(t, order.ID, logged[0].ID)
}

func TestPlaceOrderInvalidPhoneHasNoSideEffects(t *testing.T) {
	for _, raw := range []string{"12345", "", "   ", "0812345678"} {
		log := &memoryLog{}
		orders, carts, _ := newOrders(t, log, false)
		ctx := context.Background()
		fillCart(t, carts, "s1")
		before, _ := carts.Cart(ctx, "s1")

		_, err := orders.PlaceOrder(ctx, "s1", customer(raw))
		require.ErrorIs(t, err, services.ErrInvalidPhone, raw)

		after, _ := carts.Cart(ctx, "s1")
		assert.Equal(t, before, after, raw)
		assert.Empty(t, log.orders, raw)
	}
}

func TestPlaceOrderEmptyPhoneKeepsCause(t *testing.T) {
	orders, carts, _ := newOrders(t, &memoryLog{}, false)
	fillCart(t, carts, "s1")

	_, err := orders.PlaceOrder(context.Background(), "s1", customer("  "))
	assert.ErrorIs(t, err, services.ErrInvalidPhone)
	assert.ErrorIs(t, err, phone.ErrEmpty)
}

func TestPlaceOrderInvalidMpesaPhone(t *testing.T) {
	log := &memoryLog{}
	orders, carts, _ := newOrders(t, log, false)
	ctx := context.Background()
	fillCart(t, carts, "s1")

	c := customer("0712345678")
	c.MpesaPhone = "999"
	_, err := orders.PlaceOrder(ctx, "s1", c)
	require.ErrorIs(t, err, services.ErrInvalidMpesaPhone)
	assert.ErrorIs(t, err, phone.ErrInvalidFormat)

	n, _ := carts.TotalCount(ctx, "s1")
	assert.Equal(t, 4, n)
	assert.Empty(t, log.orders)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	log := &memoryLog{}
	orders, _, _ := newOrders(t, log, false)

	_, err := orders.PlaceOrder(context.Background(), "nobody", customer("0712345678"))
	assert.ErrorIs(t, err, services.ErrEmptyCart)
	assert.Empty(t, log.orders)
}

func TestPlaceOrderLogFailureReportsSuccessByDefault(t *testing.T) {
	log := &memoryLog{err: errors.New("disk full")}
	orders, carts, _ := newOrders(t, log, false)
	ctx := context.Background()
	fillCart(t, carts, "s1")

	order, err := orders.PlaceOrder(ctx, "s1", customer("0712345678"))
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)

	n, _ := carts.TotalCount(ctx, "s1")
	assert.Zero(t, n)
}

func TestPlaceOrderLogFailureStrict(t *testing.T) {
	cause := errors.New("disk full")
	log := &memoryLog{err: cause}
	orders, carts, _ := newOrders(t, log, true)
	ctx := context.Background()
	fillCart(t, carts, "s1")

	_, err := orders.PlaceOrder(ctx, "s1", customer("0712345678"))
	require.ErrorIs(t, err, services.ErrPersistence)
	assert.ErrorIs(t, err, cause)

	n, _ := carts.TotalCount(ctx, "s1")
	assert.Equal(t, 4, n, "cart kept so the customer can retry")
}

func TestOrderPlacedEvent(t *testing.T) {
	orders, carts, bus := newOrders(t, &memoryLog{}, false)
	ctx := context.Background()
	fillCart(t, carts, "s1")

	var got models.Order
	bus.Listen(event.OrderPlaced, func(_ context.Context, payload interface{}) {
		got = payload.(models.Order)
	})

	order, err := orders.PlaceOrder(ctx, "s1", customer("0712345678"))
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestConcurrentOrdersFromManySessions(t *testing.T) {
	log := &memoryLog{}
	orders, carts, _ := newOrders(t, log, false)
	ctx := context.Background()

	sessions := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, sid := range sessions {
		fillCart(t, carts, sid)
	}

	var wg sync.WaitGroup
	for _, sid := range sessions {
		wg.Add(1)
		go func(sid string) {
			defer wg.Done()
			_, err := orders.PlaceOrder(ctx, sid, customer("0712345678"))
			assert.NoError(t, err)
		}(sid)
	}
	wg.Wait()

	logged, _ := orders.ListOrders(ctx)
	assert.Len(t, logged, len(sessions))
}

func TestNewOrderIDIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := services.NewOrderID(fixedNow)
		assert.False(t, seen[id], id)
		seen[id] = true
	}
}
