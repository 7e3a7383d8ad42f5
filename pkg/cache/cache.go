// Package cache is a small JSON key/value store with TTLs. Carts live here.
//
// The "memory" driver (default) is a process-local map for single-instance
// deployments. The "redis" driver is shared across instances.
//
//	store, err := cache.Connect(ctx)
//	store.Set(ctx, "cart:abc", lines, 2*time.Hour)
//	ok, err := store.Get(ctx, "cart:abc", &lines)
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/shashiranjanraj/duka/config"
	"github.com/shashiranjanraj/duka/pkg/metrics"
)

// Store is implemented by every cache driver.
type Store interface {
	// Get unmarshals the value under key into dest. It reports false on a
	// miss; err is only set for transport or decode failures.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key for ttl. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Del removes keys. Missing keys are not an error.
	Del(ctx context.Context, keys ...string) error

	// Driver names the backend ("memory", "redis").
	Driver() string
}

// Connect builds the store selected by SESSION_DRIVER.
func Connect(ctx context.Context) (Store, error) {
	switch config.SessionDriver() {
	case "redis":
		s, err := NewRedis(ctx, config.RedisAddr(), config.RedisPassword())
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
		return s, nil
	default:
		return NewMemory(), nil
	}
}

func observe(driver string, hit bool) {
	if hit {
		metrics.CacheHits.WithLabelValues(driver).Inc()
		return
	}
	metrics.CacheMisses.WithLabelValues(driver).Inc()
}
