package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/duka/app/models"
	"github.com/shashiranjanraj/duka/app/requests"
	"github.com/shashiranjanraj/duka/app/services"
	"github.com/shashiranjanraj/duka/pkg/ctx"
	"github.com/shashiranjanraj/duka/pkg/logger"
	"github.com/shashiranjanraj/duka/pkg/money"
	"github.com/shashiranjanraj/duka/pkg/sse"
)

// uploadFields are the multipart fields product images may arrive under.
var uploadFields = []string{"images", "image"}

const (
	// maxUploadFiles bounds how many images one product form may carry.
	maxUploadFiles = 10
	feedHeartbeat  = 15 * time.Second
)

// AdminController serves the catalog management and order review endpoints.
type AdminController struct {
	catalog   *services.CatalogService
	orders    *services.OrderService
	feed      *sse.Hub
	maxUpload int64
}

func NewAdminController(catalog *services.CatalogService, orders *services.OrderService, feed *sse.Hub, maxUpload int64) *AdminController {
	return &AdminController{catalog: catalog, orders: orders, feed: feed, maxUpload: maxUpload}
}

type dashboard struct {
	services.CatalogStats
	TotalValueDisplay string           `json:"total_value_display"`
	Products          []models.Product `json:"products"`
}

// Dashboard returns catalog stats and the full product list.
func (h *AdminController) Dashboard(c *ctx.Context) {
	stats, err := h.catalog.Stats(c.Context())
	if err != nil {
		c.InternalError(err)
		return
	}
	products, err := h.catalog.All(c.Context())
	if err != nil {
		c.InternalError(err)
		return
	}
	c.Success(dashboard{
		CatalogStats:      stats,
		TotalValueDisplay: money.Format(stats.TotalValue),
		Products:          products,
	})
}

type orderList struct {
	Orders         []models.Order  `json:"orders"`
	Count          int             `json:"count"`
	Revenue        decimal.Decimal `json:"revenue"`
	RevenueDisplay string          `json:"revenue_display"`
}

func (h *AdminController) Orders(c *ctx.Context) {
	orders, err := h.orders.ListOrders(c.Context())
	if err != nil {
		c.InternalError(err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	revenue := money.Zero
	for _, o := range orders {
		revenue = revenue.Add(o.Total)
	}
	c.Success(orderList{
		Orders:         orders,
		Count:          len(orders),
		Revenue:        revenue,
		RevenueDisplay: money.Format(revenue),
	})
}

// Stream pushes an event for every order placed while the client is
// connected.
func (h *AdminController) Stream(c *ctx.Context) {
	if h.feed == nil {
		c.NotFound()
		return
	}
	if err := h.feed.Serve(c.W, c.R, feedHeartbeat); err != nil && !errors.Is(err, sse.ErrUnsupported) {
		logger.WithCtx(c.Context()).Warn("order feed closed", "error", err)
	}
}

func (h *AdminController) Create(c *ctx.Context) {
	form, ok := h.bindProduct(c)
	if !ok {
		return
	}
	uploads, closeAll, err := h.uploads(c)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}
	defer closeAll()

	p, err := h.catalog.Create(c.Context(), form.Input(), uploads)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Created(p)
}

func (h *AdminController) Update(c *ctx.Context) {
	form, ok := h.bindProduct(c)
	if !ok {
		return
	}
	uploads, closeAll, err := h.uploads(c)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}
	defer closeAll()

	p, err := h.catalog.Update(c.Context(), c.Param("id"), form.Input(), uploads)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Success(p)
}

func (h *AdminController) Delete(c *ctx.Context) {
	if err := h.catalog.Delete(c.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Success(map[string]bool{"success": true})
}

func (h *AdminController) bindProduct(c *ctx.Context) (requests.ProductForm, bool) {
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, h.maxUpload*maxUploadFiles+1<<20)
	var form requests.ProductForm
	return form, c.BindForm(&form, h.maxUpload)
}

// uploads opens every file posted under uploadFields. The returned func
// closes them.
func (h *AdminController) uploads(c *ctx.Context) ([]services.Upload, func(), error) {
	var (
		out   []services.Upload
		files []multipart.File
	)
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	if c.R.MultipartForm == nil {
		return nil, closeAll, nil
	}

	for _, field := range uploadFields {
		for _, fh := range c.R.MultipartForm.File[field] {
			if fh.Filename == "" {
				continue
			}
			if len(out) == maxUploadFiles {
				closeAll()
				return nil, func() {}, errors.New("too many image files")
			}
			f, err := fh.Open()
			if err != nil {
				closeAll()
				return nil, func() {}, err
			}
			files = append(files, f)
			out = append(out, services.Upload{Filename: fh.Filename, Content: f})
		}
	}
	return out, closeAll, nil
}

func (h *AdminController) fail(c *ctx.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		c.NotFound("Product not found")
	case errors.Is(err, services.ErrInvalidImage):
		c.ValidationError(map[string]string{"images": err.Error()})
	default:
		c.InternalError(err)
	}
}
