package kernel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shashiranjanraj/duka/app/repositories"
	"github.com/shashiranjanraj/duka/app/services"
	"github.com/shashiranjanraj/duka/config"
	"github.com/shashiranjanraj/duka/pkg/cache"
	"github.com/shashiranjanraj/duka/pkg/database"
	"github.com/shashiranjanraj/duka/pkg/event"
	"github.com/shashiranjanraj/duka/pkg/logger"
	"github.com/shashiranjanraj/duka/pkg/middleware"
	"github.com/shashiranjanraj/duka/pkg/phone"
	"github.com/shashiranjanraj/duka/pkg/schedule"
	"github.com/shashiranjanraj/duka/pkg/session"
	"github.com/shashiranjanraj/duka/pkg/sse"
	"github.com/shashiranjanraj/duka/pkg/storage"
)

const cartPurgeInterval = 10 * time.Minute

// App is a booted storefront: its services plus the resources that need
// closing on shutdown.
type App struct {
	Disk     storage.Disk
	Cache    cache.Store
	OrderLog repositories.OrderLog
	Events   *event.Bus
	Feed     *sse.Hub

	Carts   *services.CartService
	Orders  *services.OrderService
	Catalog *services.CatalogService

	scheduler *schedule.Scheduler
	limiter   *middleware.Limiter
}

// Boot loads config and connects storage, the cart cache and the order
// log. Call Close when done.
func Boot(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	disks, err := storage.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	disk := disks.Default()

	store, err := cache.Connect(ctx)
	if err != nil {
		return nil, err
	}

	orderLog, err := repositories.ConnectOrderLog(ctx, disk)
	if err != nil {
		return nil, fmt.Errorf("order log: %w", err)
	}

	a := &App{
		Disk:      disk,
		Cache:     store,
		OrderLog:  orderLog,
		Events:    event.New(),
		Feed:      sse.NewHub(),
		scheduler: schedule.New(),
	}
	RegisterListeners(a.Events, a.Feed)

	carts := repositories.NewCacheCartStore(store, config.SessionTTL())
	a.Carts = services.NewCartService(carts, a.Events)
	a.Orders = services.NewOrderService(a.Carts, orderLog, a.Events, services.OrderOptions{
		Phone:  phone.New(config.PhoneCountryCode(), config.PhoneMobilePrefix()),
		Strict: config.OrderStrictPersistence(),
	})
	products := repositories.NewProductRepository(disk, config.CatalogPath())
	a.Catalog = services.NewCatalogService(products, services.NewImageStore(disk, config.UploadMaxBytes()))

	if mem, ok := store.(*cache.MemoryStore); ok {
		a.scheduler.Every(cartPurgeInterval).Name("carts:purge").Run(func(ctx context.Context) {
			if n := mem.Purge(); n > 0 {
				logger.Info("expired carts purged", "count", n)
			}
		})
	}

	logger.Info("storefront booted",
		"disk", config.StorageDefault(),
		"cart_driver", store.Driver(),
		"order_log", orderLog.Driver(),
	)
	return a, nil
}

// Handler builds the HTTP handler and starts the background scheduler.
func (a *App) Handler(ctx context.Context) http.Handler {
	a.scheduler.Start(ctx)

	if a.limiter == nil {
		a.limiter = middleware.NewLimiter(rateLimit(), config.Duration("RATE_WINDOW", time.Minute)).
			TrustProxies(middleware.ParseProxies(config.Get("RATE_TRUSTED_PROXIES", ""))...)
	}

	opts := session.DefaultOptions()
	opts.TTL = config.SessionTTL()
	opts.Secure = config.Bool("SESSION_SECURE", false)

	cors := middleware.DefaultCORSOptions()
	if origins := middleware.ParseOrigins(config.Get("CORS_ALLOWED_ORIGINS", "")); len(origins) > 0 {
		cors.AllowedOrigins = origins
	}

	return NewRouter(Deps{
		Carts:     a.Carts,
		Orders:    a.Orders,
		Catalog:   a.Catalog,
		Disk:      a.Disk,
		MaxUpload: config.UploadMaxBytes(),
		Session:   opts,
		CORS:      cors,
		Limiter:   a.limiter,
		Feed:      a.Feed,
	}).Handler()
}

// Close stops background work and releases the order log and cache.
func (a *App) Close(ctx context.Context) error {
	a.scheduler.Stop()
	if a.limiter != nil {
		a.limiter.Stop()
	}

	var errs []error
	if err := a.OrderLog.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("order log: %w", err))
	}
	if err := database.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	if c, ok := a.Cache.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache: %w", err))
		}
	}
	return errors.Join(errs...)
}

func rateLimit() int {
	n, err := strconv.Atoi(config.Get("RATE_LIMIT", "120"))
	if err != nil || n <= 0 {
		return 120
	}
	return n
}
