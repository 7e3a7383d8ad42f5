// Package sse streams Server-Sent Events to HTTP clients.
//
// A Hub fans published events out to every subscribed stream:
//
//	hub := sse.NewHub()
//	bus.Listen(event.OrderPlaced, func(_ context.Context, p any) { hub.Publish("order.placed", p) })
//
//	router.Get("/admin/orders/stream", "admin.orders.stream", ctx.Wrap(func(c *ctx.Context) {
//	    hub.Serve(c.W, c.R, 15*time.Second)
//	}))
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// ErrUnsupported is returned when the ResponseWriter cannot flush.
var ErrUnsupported = errors.New("sse: streaming not supported")

// Stream represents an active SSE connection to one client.
type Stream struct {
	w  http.ResponseWriter
	r  *http.Request
	rc *http.ResponseController
}

// New sets the event-stream headers and flushes them.
func New(w http.ResponseWriter, r *http.Request) (*Stream, error) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	s := &Stream{w: w, r: r, rc: http.NewResponseController(w)}
	// Streams outlive the server's write timeout.
	_ = s.rc.SetWriteDeadline(time.Time{})
	w.WriteHeader(http.StatusOK)
	if err := s.rc.Flush(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	return s, nil
}

// Send writes a named event with a JSON-encoded data payload.
func (s *Stream) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Comment writes an SSE comment line, used as a keepalive.
func (s *Stream) Comment(msg string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", msg); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Closed reports whether the client has gone away.
func (s *Stream) Closed() bool {
	return s.r.Context().Err() != nil
}

// Message is one published event.
type Message struct {
	Event string
	Data  any
}

// subscriberBuffer is how many events a slow client may lag behind before
// it starts missing them.
const subscriberBuffer = 16

// Hub fans out published messages to subscribers. Publish never blocks; a
// subscriber whose buffer is full drops the message.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Message]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: map[chan Message]struct{}{}}
}

// Subscribe returns a channel of published messages and a func that
// unsubscribes and closes it.
func (h *Hub) Subscribe() (<-chan Message, func()) {
	ch := make(chan Message, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Publish(event string, data any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- Message{Event: event, Data: data}:
		default:
		}
	}
}

// Subscribers returns the number of connected streams.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Serve streams hub messages to one client until it disconnects, sending a
// keepalive comment every heartbeat.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, heartbeat time.Duration) error {
	stream, err := New(w, r)
	if err != nil {
		return err
	}
	msgs, cancel := h.Subscribe()
	defer cancel()

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return nil
		case m := <-msgs:
			if err := stream.Send(m.Event, m.Data); err != nil {
				return err
			}
		case <-ticker.C:
			if err := stream.Comment("ping"); err != nil {
				return err
			}
		}
	}
}
