package repositories_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/duka/app/models"
	"github.com/shashiranjanraj/duka/app/repositories"
)

const catalogJSON = `[
  {"id": "1", "name": "Sneaker", "price": 2500, "image": "a.jpg", "category": "Shoes", "in_stock": true},
  {"id": "2", "name": "Tote", "price": 1200.5, "image": "b.jpg", "category": "Bags", "in_stock": false},
  {"id": "3", "name": "Sandal", "price": 900, "image": "c.jpg", "category": "shoes"}
]`

func seeded(t *testing.T) *repositories.ProductRepository {
	t.Helper()
	disk := tempDisk(t)
	require.NoError(t, disk.Put(bg, "products.json", []byte(catalogJSON)))
	return repositories.NewProductRepository(disk, "products.json")
}

func TestProductAllDecodesCatalog(t *testing.T) {
	repo := seeded(t)
	all, err := repo.All(bg)
	require.NoError(t, err)
	require.Len(t, all, 3)

	assert.True(t, all[1].Price.Equal(decimal.RequireFromString("1200.5")))
	assert.False(t, all[1].Available())
	assert.True(t, all[2].Available(), "missing in_stock means in stock")
}

func TestProductBlankFileIsEmpty(t *testing.T) {
	disk := tempDisk(t)
	require.NoError(t, disk.Put(bg, "products.json", []byte("  \n")))
	all, err := repositories.NewProductRepository(disk, "products.json").All(bg)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestProductCorruptFileErrors(t *testing.T) {
	disk := tempDisk(t)
	require.NoError(t, disk.Put(bg, "products.json", []byte("{nope")))
	_, err := repositories.NewProductRepository(disk, "products.json").All(bg)
	assert.Error(t, err)
}

func TestProductFindAndCategories(t *testing.T) {
	repo := seeded(t)

	p, err := repo.FindByID(bg, "2")
	require.NoError(t, err)
	assert.Equal(t, "Tote", p.Name)

	_, err = repo.FindByID(bg, "42")
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)

	shoes, err := repo.ByCategory(bg, "SHOES")
	require.NoError(t, err)
	assert.Len(t, shoes, 2)

	cats, err := repo.Categories(bg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bags", "Shoes", "shoes"}, cats)
}

func TestProductCreateUpdateDelete(t *testing.T) {
	repo := seeded(t)

	created, err := repo.Create(bg, models.Product{Name: "Cap", Price: decimal.NewFromInt(300), Category: "Hats"})
	require.NoError(t, err)
	assert.Equal(t, "4", created.ID)

	updated, err := repo.Update(bg, "4", func(p *models.Product) {
		p.Name = "Bucket Hat"
		p.ID = "hijack"
	})
	require.NoError(t, err)
	assert.Equal(t, "4", updated.ID)
	assert.Equal(t, "Bucket Hat", updated.Name)

	_, err = repo.Update(bg, "99", func(*models.Product) {})
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)

	require.NoError(t, repo.Delete(bg, "2"))
	require.NoError(t, repo.Delete(bg, "2"))
	all, err := repo.All(bg)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Count + 1 would collide with "4" after the delete.
	next, err := repo.Create(bg, models.Product{Name: "Belt"})
	require.NoError(t, err)
	assert.Equal(t, "5", next.ID)
}
