package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, s.Set(ctx, "k", map[string]int{"a": 1}, 0))

	var got map[string]int
	ok, err := s.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, got["a"])

	require.NoError(t, s.Del(ctx, "k", "missing"))
	ok, err = s.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	in := []string{"a"}
	require.NoError(t, s.Set(ctx, "k", in, 0))
	in[0] = "mutated"

	var out []string
	_, err := s.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, out)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", 1, time.Minute))

	var v int
	ok, _ := s.Get(ctx, "k", &v)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = s.Get(ctx, "k", &v)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Purge())
}
