package repositories_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/duka/app/models"
	"github.com/shashiranjanraj/duka/app/repositories"
	"github.com/shashiranjanraj/duka/pkg/cache"
)

func TestCacheCartStoreRoundTrip(t *testing.T) {
	store := repositories.NewCacheCartStore(cache.NewMemory(), time.Hour)

	lines, err := store.Load(bg, "s1")
	require.NoError(t, err)
	assert.NotNil(t, lines)
	assert.Empty(t, lines)

	want := []models.CartLine{
		{ProductID: "1", Name: "Sneaker", UnitPrice: decimal.RequireFromString("19.99"), Quantity: 2},
		{ProductID: "7", Name: "Bag", UnitPrice: decimal.RequireFromString("1500"), Quantity: 1},
	}
	require.NoError(t, store.Save(bg, "s1", want))

	got, err := store.Load(bg, "s1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ProductID)
	assert.True(t, got[0].UnitPrice.Equal(want[0].UnitPrice))
	assert.Equal(t, 2, got[0].Quantity)

	other, err := store.Load(bg, "s2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestCacheCartStoreEmptySaveDeletes(t *testing.T) {
	mem := cache.NewMemory()
	store := repositories.NewCacheCartStore(mem, time.Hour)

	require.NoError(t, store.Save(bg, "s1", []models.CartLine{{ProductID: "1", Quantity: 1}}))
	require.NoError(t, store.Save(bg, "s1", nil))

	var raw []models.CartLine
	ok, err := mem.Get(bg, "duka:cart:s1", &raw)
	require.NoError(t, err)
	assert.False(t, ok)
}
