package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/shashiranjanraj/duka/app/models"
	"github.com/shashiranjanraj/duka/pkg/cache"
)

// CartStore persists one cart per session id. Implementations must treat
// each Save as a whole-cart replacement.
type CartStore interface {
	Load(ctx context.Context, sessionID string) ([]models.CartLine, error)
	Save(ctx context.Context, sessionID string, lines []models.CartLine) error
	Delete(ctx context.Context, sessionID string) error
}

const cartKeyPrefix = "duka:cart:"

// CacheCartStore keeps carts in a cache.Store (memory or redis) with a
// sliding TTL refreshed on every save.
type CacheCartStore struct {
	cache cache.Store
	ttl   time.Duration
}

func NewCacheCartStore(c cache.Store, ttl time.Duration) *CacheCartStore {
	return &CacheCartStore{cache: c, ttl: ttl}
}

func cartKey(sessionID string) string { return cartKeyPrefix + sessionID }

// Load returns an empty cart for unknown or expired sessions.
func (s *CacheCartStore) Load(ctx context.Context, sessionID string) ([]models.CartLine, error) {
	var lines []models.CartLine
	ok, err := s.cache.Get(ctx, cartKey(sessionID), &lines)
	if err != nil {
		return nil, fmt.Errorf("cart store: load %s: %w", sessionID, err)
	}
	if !ok || lines == nil {
		return []models.CartLine{}, nil
	}
	return lines, nil
}

func (s *CacheCartStore) Save(ctx context.Context, sessionID string, lines []models.CartLine) error {
	if len(lines) == 0 {
		return s.Delete(ctx, sessionID)
	}
	if err := s.cache.Set(ctx, cartKey(sessionID), lines, s.ttl); err != nil {
		return fmt.Errorf("cart store: save %s: %w", sessionID, err)
	}
	return nil
}

func (s *CacheCartStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.cache.Del(ctx, cartKey(sessionID)); err != nil {
		return fmt.Errorf("cart store: delete %s: %w", sessionID, err)
	}
	return nil
}
