package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/duka/pkg/storage"
)

func TestLocalDiskPutGet(t *testing.T) {
	ctx := context.Background()
	d, err := storage.NewLocal(t.TempDir(), "http://localhost:8080/storage/")
	require.NoError(t, err)

	require.NoError(t, d.Put(ctx, "data/orders.json", []byte("[]")))
	require.NoError(t, d.Put(ctx, "data/orders.json", []byte(`[{"id":"1"}]`)))

	got, err := d.Get(ctx, "data/orders.json")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, string(got))

	ok, err := d.Exists(ctx, "data/orders.json")
	require.NoError(t, err)
	assert.True(t, ok)

	files, err := d.Files(ctx, "data")
	require.NoError(t, err)
	assert.Equal(t, []string{"data/orders.json"}, files, "temp files must not linger")

	assert.Equal(t, "http://localhost:8080/storage/data/orders.json", d.URL("data/orders.json"))
}

func TestLocalDiskMissing(t *testing.T) {
	ctx := context.Background()
	d, err := storage.NewLocal(t.TempDir(), "")
	require.NoError(t, err)

	_, err = d.Get(ctx, "nope.json")
	assert.ErrorIs(t, err, storage.ErrNotExist)

	ok, err := d.Exists(ctx, "nope.json")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, d.Delete(ctx, "nope.json"))

	files, err := d.Files(ctx, "missing-dir")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestLocalDiskStaysInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	d, err := storage.NewLocal(root, "")
	require.NoError(t, err)

	require.NoError(t, d.Put(ctx, "../../escape.txt", []byte("x")))
	ok, err := d.Exists(ctx, "escape.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestManager(t *testing.T) {
	m := storage.NewManager("local")
	_, err := m.Use("local")
	assert.Error(t, err)

	d, err := storage.NewLocal(t.TempDir(), "")
	require.NoError(t, err)
	m.Register("local", d)

	assert.Same(t, d, m.Default())
	assert.Equal(t, []string{"local"}, m.Names())
}
