// Package event is a small in-process event bus. Services fire events after
// state changes; listeners registered at boot handle logging and metrics.
package event

import (
	"context"
	"sync"
)

// Well-known event names.
const (
	CartUpdated = "cart.updated"
	OrderPlaced = "order.placed"
)

// Handler receives an event payload.
type Handler func(ctx context.Context, payload interface{})

// Bus dispatches named events to registered handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Listen registers a handler for the given event name.
func (b *Bus) Listen(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Fire dispatches synchronously to all listeners in registration order.
// A nil Bus is a no-op so services can run without one.
func (b *Bus) Fire(ctx context.Context, name string, payload interface{}) {
	if b == nil {
		return
	}
	for _, h := range b.snapshot(name) {
		h(ctx, payload)
	}
}

// FireAsync dispatches to all listeners concurrently and returns at once.
// The listeners get a context detached from ctx's cancellation.
func (b *Bus) FireAsync(ctx context.Context, name string, payload interface{}) {
	if b == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	for _, h := range b.snapshot(name) {
		go h(detached, payload)
	}
}

func (b *Bus) snapshot(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	hs := make([]Handler, len(b.handlers[name]))
	copy(hs, b.handlers[name])
	return hs
}

// Flush removes all listeners.
func (b *Bus) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = map[string][]Handler{}
}
