// Package kernel assembles the storefront's http.Handler: the global
// middleware stack, the route table, /metrics and the local storage mount.
package kernel

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/duka/app/controllers"
	"github.com/shashiranjanraj/duka/app/routes"
	"github.com/shashiranjanraj/duka/app/services"
	"github.com/shashiranjanraj/duka/pkg/metrics"
	"github.com/shashiranjanraj/duka/pkg/middleware"
	"github.com/shashiranjanraj/duka/pkg/reqid"
	"github.com/shashiranjanraj/duka/pkg/response"
	"github.com/shashiranjanraj/duka/pkg/router"
	"github.com/shashiranjanraj/duka/pkg/session"
	"github.com/shashiranjanraj/duka/pkg/sse"
	"github.com/shashiranjanraj/duka/pkg/storage"
)

// Deps are the services and options the handler is built from.
type Deps struct {
	Carts   *services.CartService
	Orders  *services.OrderService
	Catalog *services.CatalogService

	// Disk, when it is a local disk, is served read-only under /storage.
	Disk      storage.Disk
	MaxUpload int64

	Session session.Options
	CORS    middleware.CORSOptions
	// Limiter throttles state-changing endpoints; nil disables throttling.
	Limiter *middleware.Limiter
	// Feed carries live order notices to /admin/orders/stream.
	Feed *sse.Hub
}

// NewRouter builds the router with every route registered. Use
// Handler() on the result to serve it.
func NewRouter(d Deps) *router.Router {
	r := router.New()

	// Global middleware, outermost first. Metrics wraps everything so it
	// sees total latency; the request id exists before anything logs.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(session.Middleware(d.Session))
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(d.CORS))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) { response.MethodNotAllowed(w) })

	r.Get("/metrics", "metrics", metrics.Handler())

	if local, ok := d.Disk.(*storage.LocalDisk); ok {
		r.Mount("/storage", "storage", http.StripPrefix("/storage", noListing(http.FileServer(http.Dir(local.Root())))))
	}

	var throttle router.Middleware
	if d.Limiter != nil {
		throttle = d.Limiter.Middleware
	}

	routes.Register(r, routes.Controllers{
		Cart:     controllers.NewCartController(d.Carts, d.Catalog),
		Checkout: controllers.NewCheckoutController(d.Orders),
		Catalog:  controllers.NewCatalogController(d.Catalog),
		Admin:    controllers.NewAdminController(d.Catalog, d.Orders, d.Feed, d.MaxUpload),
	}, throttle)

	return r
}

// noListing hides directory indexes of the storage disk.
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			response.NotFound(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
