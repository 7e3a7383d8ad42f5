// Package routes is the storefront's route table.
package routes

import (
	"github.com/shashiranjanraj/duka/app/controllers"
	"github.com/shashiranjanraj/duka/pkg/ctx"
	"github.com/shashiranjanraj/duka/pkg/router"
)

// Controllers bundles the handlers the route table dispatches to.
type Controllers struct {
	Cart     *controllers.CartController
	Checkout *controllers.CheckoutController
	Catalog  *controllers.CatalogController
	Admin    *controllers.AdminController
}

// Register mounts every storefront route on r. throttle, when non-nil,
// wraps the state-changing endpoints.
func Register(r *router.Router, c Controllers, throttle router.Middleware) {
	var limited []router.Middleware
	if throttle != nil {
		limited = append(limited, throttle)
	}

	api := r.Group("/api")
	api.Get("/home", "catalog.home", ctx.Wrap(c.Catalog.Home))
	api.Get("/products", "catalog.index", ctx.Wrap(c.Catalog.Index))
	api.Get("/products/{id}", "catalog.show", ctx.Wrap(c.Catalog.Show))
	api.Get("/categories/{category}", "catalog.category", ctx.Wrap(c.Catalog.Category))
	api.Get("/search", "catalog.search", ctx.Wrap(c.Catalog.Search))

	r.Get("/cart", "cart.show", ctx.Wrap(c.Cart.Show))
	r.Get("/get_cart_count", "cart.count", ctx.Wrap(c.Cart.Count))
	r.Post("/add_to_cart", "cart.add", ctx.Wrap(c.Cart.Add), limited...)
	r.Post("/remove_from_cart", "cart.remove", ctx.Wrap(c.Cart.Remove), limited...)
	r.Post("/update_quantity", "cart.update", ctx.Wrap(c.Cart.UpdateQuantity), limited...)
	r.Post("/clear_cart", "cart.clear", ctx.Wrap(c.Cart.Clear), limited...)
	r.Post("/checkout", "checkout.place", ctx.Wrap(c.Checkout.Place), limited...)

	admin := r.Group("/admin")
	admin.Get("", "admin.dashboard", ctx.Wrap(c.Admin.Dashboard))
	admin.Get("/orders", "admin.orders", ctx.Wrap(c.Admin.Orders))
	admin.Get("/orders/stream", "admin.orders.stream", ctx.Wrap(c.Admin.Stream))
	admin.Post("/products", "admin.products.create", ctx.Wrap(c.Admin.Create), limited...)
	admin.Post("/products/{id}", "admin.products.update", ctx.Wrap(c.Admin.Update), limited...)
	admin.Delete("/products/{id}", "admin.products.delete", ctx.Wrap(c.Admin.Delete), limited...)
}
