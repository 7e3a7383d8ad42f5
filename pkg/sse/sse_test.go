package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncRecorder guards the recorder body so the test can read it while
// Serve writes.
type syncRecorder struct {
	mu sync.Mutex
	*httptest.ResponseRecorder
}

func (r *syncRecorder) Write(b []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(b)
}

func (r *syncRecorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ResponseRecorder.Flush()
}

func (r *syncRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Body.String()
}

func TestStreamSend(t *testing.T) {
	rec := httptest.NewRecorder()
	s, err := New(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	require.NoError(t, s.Send("order.placed", map[string]string{"id": "ORD-1"}))
	require.NoError(t, s.Comment("ping"))

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "event: order.placed\ndata: {\"id\":\"ORD-1\"}\n\n: ping\n\n", rec.Body.String())
	assert.False(t, s.Closed())
}

func TestHubDropsForSlowSubscribers(t *testing.T) {
	h := NewHub()
	msgs, cancel := h.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		h.Publish("tick", i)
	}
	assert.Len(t, msgs, subscriberBuffer)
	assert.Equal(t, 1, h.Subscribers())

	cancel()
	cancel()
	assert.Equal(t, 0, h.Subscribers())
}

func TestHubServe(t *testing.T) {
	h := NewHub()
	ctx, stop := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/stream", nil).WithContext(ctx)
	rec := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}

	done := make(chan error, 1)
	go func() { done <- h.Serve(rec, req, time.Hour) }()

	require.Eventually(t, func() bool { return h.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	h.Publish("order.placed", map[string]int{"items": 2})

	require.Eventually(t, func() bool {
		return strings.Contains(rec.body(), "event: order.placed\ndata: {\"items\":2}")
	}, time.Second, 5*time.Millisecond)

	stop()
	require.NoError(t, <-done)
	assert.Equal(t, 0, h.Subscribers())
}
