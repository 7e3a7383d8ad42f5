package kernel_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/duka/app/models"
	"github.com/shashiranjanraj/duka/app/repositories"
	"github.com/shashiranjanraj/duka/app/services"
	"github.com/shashiranjanraj/duka/internal/kernel"
	"github.com/shashiranjanraj/duka/pkg/cache"
	"github.com/shashiranjanraj/duka/pkg/event"
	"github.com/shashiranjanraj/duka/pkg/middleware"
	"github.com/shashiranjanraj/duka/pkg/phone"
	"github.com/shashiranjanraj/duka/pkg/session"
	"github.com/shashiranjanraj/duka/pkg/sse"
	"github.com/shashiranjanraj/duka/pkg/storage"
	"github.com/shashiranjanraj/duka/pkg/testkit"
)

// 1x1 transparent PNG.
var pngPixel, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

const catalogJSON = `[
  {"id":"1","name":"Kikoi Wrap","price":1200.50,"image":"kikoi.jpg","category":"Home & Living","description":"Handwoven cotton"},
  {"id":"2","name":"Beaded Necklace","price":850,"image":"necklace.jpg","category":"Accessories"},
  {"id":"3","name":"Sisal Basket","price":2500,"image":"basket.jpg","category":"Home & Living","in_stock":false}
]`

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type cartResult struct {
	Success   bool            `json:"success"`
	CartCount int             `json:"cart_count"`
	CartTotal decimal.Decimal `json:"cart_total"`
}

type harness struct {
	t       *testing.T
	handler http.Handler
	disk    *storage.LocalDisk
	feed    *sse.Hub
	cookie  *http.Cookie
}

func newHarness(t *testing.T, limiter *middleware.Limiter) *harness {
	t.Helper()
	disk, err := storage.NewLocal(t.TempDir(), "http://localhost:8080/storage")
	require.NoError(t, err)
	require.NoError(t, disk.Put(context.Background(), "products.json", []byte(catalogJSON)))

	orderLog := repositories.NewFileOrderLog(disk, "orders.json")
	t.Cleanup(func() { _ = orderLog.Close(context.Background()) })

	bus := event.New()
	feed := sse.NewHub()
	kernel.RegisterListeners(bus, feed)

	carts := services.NewCartService(repositories.NewCacheCartStore(cache.NewMemory(), time.Hour), bus)
	orders := services.NewOrderService(carts, orderLog, bus, services.OrderOptions{Phone: phone.Default})
	catalog := services.NewCatalogService(
		repositories.NewProductRepository(disk, "products.json"),
		services.NewImageStore(disk, 1<<20),
	)

	r := kernel.NewRouter(kernel.Deps{
		Carts:     carts,
		Orders:    orders,
		Catalog:   catalog,
		Disk:      disk,
		MaxUpload: 1 << 20,
		Session:   session.DefaultOptions(),
		CORS:      middleware.DefaultCORSOptions(),
		Limiter:   limiter,
		Feed:      feed,
	})
	return &harness{t: t, handler: r.Handler(), disk: disk, feed: feed}
}

func (h *harness) send(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	h.t.Helper()
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == "duka_session" {
			h.cookie = c
		}
	}

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (h *harness) get(path string) (*httptest.ResponseRecorder, envelope) {
	return h.send(httptest.NewRequest(http.MethodGet, path, nil))
}

func (h *harness) postJSON(path, body string) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return h.send(req)
}

func (h *harness) cart(path, body string) cartResult {
	h.t.Helper()
	rec, env := h.postJSON(path, body)
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	var out cartResult
	require.NoError(h.t, json.Unmarshal(env.Data, &out))
	require.True(h.t, out.Success)
	return out
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if len(raw) == 0 {
		return v
	}
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func TestCartFlow(t *testing.T) {
	h := newHarness(t, nil)

	res := h.cart("/add_to_cart", `{"product_id":"1"}`)
	assert.Equal(t, 1, res.CartCount)
	require.NotNil(t, h.cookie)

	res = h.cart("/add_to_cart", `{"product_id":1}`)
	assert.Equal(t, 2, res.CartCount)

	res = h.cart("/add_to_cart", `{"product_id":"2"}`)
	assert.Equal(t, 3, res.CartCount)
	assert.Equal(t, "3251", res.CartTotal.String())

	res = h.cart("/update_quantity", `{"product_id":"1","quantity":3}`)
	assert.Equal(t, 4, res.CartCount)
	assert.Equal(t, "4451.5", res.CartTotal.String())

	res = h.cart("/update_quantity", `{"product_id":"1"}`)
	assert.Equal(t, 2, res.CartCount, "missing quantity means 1")

	res = h.cart("/update_quantity", `{"product_id":"99","quantity":4}`)
	assert.Equal(t, 2, res.CartCount, "unknown line is not created")

	res = h.cart("/remove_from_cart", `{"product_id":"2"}`)
	assert.Equal(t, 1, res.CartCount)
	assert.Equal(t, "1200.5", res.CartTotal.String())

	_, env := h.get("/get_cart_count")
	summary := decode[models.CartSummary](t, env.Data)
	assert.Equal(t, 1, summary.Count)
	assert.Equal(t, "1200.5", summary.Total.String())

	_, env = h.get("/cart")
	view := decode[struct {
		Items []struct {
			ID              string `json:"id"`
			Quantity        int    `json:"quantity"`
			SubtotalDisplay string `json:"subtotal_display"`
		} `json:"items"`
		Count           int    `json:"count"`
		SubtotalDisplay string `json:"subtotal_display"`
	}](t, env.Data)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "1", view.Items[0].ID)
	assert.Equal(t, "1,200.50", view.Items[0].SubtotalDisplay)
	assert.Equal(t, "1,200.50", view.SubtotalDisplay)

	res = h.cart("/clear_cart", ``)
	assert.Equal(t, 0, res.CartCount)
	assert.True(t, res.CartTotal.IsZero())
}

func TestCartIsPerSession(t *testing.T) {
	h := newHarness(t, nil)
	h.cart("/add_to_cart", `{"product_id":"1"}`)

	h.cookie = nil
	_, env := h.get("/get_cart_count")
	assert.Equal(t, 0, decode[models.CartSummary](t, env.Data).Count)
}

func TestAddUnknownProduct(t *testing.T) {
	h := newHarness(t, nil)

	rec, env := h.postJSON("/add_to_cart", `{"product_id":"404"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", env.Message)

	rec, env = h.postJSON("/add_to_cart", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, env.Errors, "product_id")

	rec, _ = h.postJSON("/add_to_cart", `{"product_id":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

const validCheckout = `{"customer_name":"Wanjiku","email":"w@example.com","phone":"+254 712 345 678","mpesa_phone":"0722000111","address":"Moi Avenue, Nairobi"}`

func TestCheckout(t *testing.T) {
	h := newHarness(t, nil)

	rec, env := h.postJSON("/checkout", validCheckout)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty cart")
	assert.Equal(t, "Your cart is empty.", env.Message)

	h.cart("/add_to_cart", `{"product_id":"1"}`)
	h.cart("/add_to_cart", `{"product_id":"2"}`)

	rec, env = h.postJSON("/checkout", strings.Replace(validCheckout, "+254 712 345 678", "12345", 1))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, env.Errors, "phone")

	rec, env = h.postJSON("/checkout", strings.Replace(validCheckout, "0722000111", "0622000111", 1))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, env.Errors, "mpesa_phone")

	rec, env = h.postJSON("/checkout", `{"phone":"0712345678"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, env.Errors, "customer_name")
	assert.Contains(t, env.Errors, "address")

	_, env = h.get("/get_cart_count")
	assert.Equal(t, 2, decode[models.CartSummary](t, env.Data).Count, "rejected checkouts keep the cart")

	rec, env = h.postJSON("/checkout", validCheckout)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[struct {
		models.Order
		TotalDisplay string `json:"total_display"`
	}](t, env.Data)
	assert.Regexp(t, `^ORD-\d{14}-[0-9a-f]{8}$`, order.ID)
	assert.Equal(t, "0712345678", order.Phone)
	assert.Equal(t, "0722000111", order.MpesaPhone)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, "2,050.50", order.TotalDisplay)

	_, env = h.get("/get_cart_count")
	assert.Equal(t, 0, decode[models.CartSummary](t, env.Data).Count)

	_, env = h.get("/admin/orders")
	list := decode[struct {
		Orders         []models.Order `json:"orders"`
		Count          int            `json:"count"`
		RevenueDisplay string         `json:"revenue_display"`
	}](t, env.Data)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, order.ID, list.Orders[0].ID)
	assert.Equal(t, "2,050.50", list.RevenueDisplay)
}

func TestCatalogEndpoints(t *testing.T) {
	h := newHarness(t, nil)

	_, env := h.get("/api/products")
	assert.Len(t, decode[[]models.Product](t, env.Data), 3)

	rec, env := h.get("/api/products/1")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[struct {
		Product models.Product   `json:"product"`
		Related []models.Product `json:"related"`
	}](t, env.Data)
	assert.Equal(t, "Kikoi Wrap", detail.Product.Name)
	require.Len(t, detail.Related, 1)
	assert.Equal(t, "3", detail.Related[0].ID)

	rec, _ = h.get("/api/products/42")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, env = h.get("/api/categories/home-living")
	cat := decode[struct {
		Category string           `json:"category"`
		Products []models.Product `json:"products"`
	}](t, env.Data)
	assert.Equal(t, "Home Living", cat.Category)
	assert.Len(t, cat.Products, 2)

	_, env = h.get("/api/search?q=COTTON")
	hits := decode[[]models.Product](t, env.Data)
	require.Len(t, hits, 1)
	assert.Equal(t, "1", hits[0].ID)

	_, env = h.get("/api/search?q=k")
	assert.Empty(t, decode[[]models.Product](t, env.Data))

	_, env = h.get("/api/home")
	home := decode[map[string]json.RawMessage](t, env.Data)
	assert.Contains(t, home, "best_sellers")
	assert.Contains(t, home, "featured")
	assert.Contains(t, home, "categories")
}

func multipartForm(t *testing.T, fields map[string]string, files map[string][]byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, content := range files {
		fw, err := w.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestAdminProductLifecycle(t *testing.T) {
	h := newHarness(t, nil)

	body, ct := multipartForm(t, map[string]string{
		"name":     "Maasai Shuka",
		"category": "Home & Living",
		"price":    "1500",
		"in_stock": "on",
	}, map[string][]byte{"shuka photo.png": pngPixel})
	req := httptest.NewRequest(http.MethodPost, "/admin/products", body)
	req.Header.Set("Content-Type", ct)
	rec, env := h.send(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[models.Product](t, env.Data)
	assert.Equal(t, "4", created.ID)
	assert.True(t, created.Available())
	require.Len(t, created.Images, 1)
	assert.Contains(t, created.Image, "_shuka_photo.png")

	stored := strings.TrimPrefix(created.Image, "http://localhost:8080")
	rec, _ = h.get(stored)
	assert.Equal(t, http.StatusOK, rec.Code, "uploaded image is served from /storage")
	assert.Equal(t, pngPixel, rec.Body.Bytes())

	body, ct = multipartForm(t, map[string]string{
		"name":     "Maasai Shuka XL",
		"category": "Home & Living",
		"price":    "1750.25",
	}, nil)
	req = httptest.NewRequest(http.MethodPost, "/admin/products/4", body)
	req.Header.Set("Content-Type", ct)
	rec, env = h.send(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Product](t, env.Data)
	assert.Equal(t, "Maasai Shuka XL", updated.Name)
	assert.False(t, updated.Available())
	assert.Equal(t, created.Image, updated.Image)

	_, env = h.get("/admin")
	dash := decode[struct {
		TotalProducts     int    `json:"total_products"`
		InStock           int    `json:"in_stock_count"`
		OutOfStock        int    `json:"out_of_stock_count"`
		TotalValueDisplay string `json:"total_value_display"`
	}](t, env.Data)
	assert.Equal(t, 4, dash.TotalProducts)
	assert.Equal(t, 2, dash.InStock)
	assert.Equal(t, 2, dash.OutOfStock)
	assert.Equal(t, "6,300.75", dash.TotalValueDisplay)

	rec, _ = h.send(httptest.NewRequest(http.MethodDelete, "/admin/products/4", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = h.send(httptest.NewRequest(http.MethodDelete, "/admin/products/4", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "deleting twice is a no-op")
	rec, _ = h.get("/api/products/4")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRejectsBadInput(t *testing.T) {
	h := newHarness(t, nil)

	body, ct := multipartForm(t, map[string]string{"name": "X", "category": "Y", "price": "abc"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/admin/products", body)
	req.Header.Set("Content-Type", ct)
	rec, env := h.send(req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, env.Errors, "price")

	body, ct = multipartForm(t, map[string]string{"name": "X", "category": "Y", "price": "10"},
		map[string][]byte{"fake.png": []byte("not an image at all")})
	req = httptest.NewRequest(http.MethodPost, "/admin/products", body)
	req.Header.Set("Content-Type", ct)
	rec, env = h.send(req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, env.Errors, "images")

	body, ct = multipartForm(t, map[string]string{"name": "X", "category": "Y", "price": "10"}, nil)
	req = httptest.NewRequest(http.MethodPost, "/admin/products/99", body)
	req.Header.Set("Content-Type", ct)
	rec, _ = h.send(req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFallbacksAndMetrics(t *testing.T) {
	h := newHarness(t, nil)

	rec, env := h.get("/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, env.Status)

	rec, _ = h.send(httptest.NewRequest(http.MethodPut, "/cart", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec, _ = h.get("/storage/")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = h.get("/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestMutationsAreThrottled(t *testing.T) {
	limiter := middleware.NewLimiter(2, time.Minute)
	t.Cleanup(limiter.Stop)
	h := newHarness(t, limiter)

	h.cart("/add_to_cart", `{"product_id":"1"}`)
	h.cart("/add_to_cart", `{"product_id":"1"}`)
	rec, _ := h.postJSON("/add_to_cart", `{"product_id":"1"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, []string{"59", "60"}, rec.Header().Get("Retry-After"))

	rec, _ = h.get("/get_cart_count")
	assert.Equal(t, http.StatusOK, rec.Code, "reads are not throttled")
}

func TestOrderFeed(t *testing.T) {
	h := newHarness(t, nil)
	notices, cancel := h.feed.Subscribe()
	defer cancel()

	h.cart("/add_to_cart", `{"product_id":"2"}`)
	rec, _ := h.postJSON("/checkout", validCheckout)
	require.Equal(t, http.StatusCreated, rec.Code)

	select {
	case m := <-notices:
		assert.Equal(t, "order.placed", m.Event)
		notice, ok := m.Data.(kernel.OrderNotice)
		require.True(t, ok)
		assert.Equal(t, "Wanjiku", notice.CustomerName)
		assert.Equal(t, 1, notice.Items)
		assert.Equal(t, "850.00", notice.TotalDisplay)
	case <-time.After(time.Second):
		t.Fatal("no order notice published")
	}
}

func TestOrderFeedStream(t *testing.T) {
	h := newHarness(t, nil)

	ctx, stop := context.WithCancel(context.Background())
	stop()
	req := httptest.NewRequest(http.MethodGet, "/admin/orders/stream", nil).WithContext(ctx)
	rec, _ := h.send(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, 0, h.feed.Subscribers())
}

func TestScenarios(t *testing.T) {
	h := newHarness(t, nil)
	testkit.RunDir(t, h.handler, "testdata/scenarios")
}
