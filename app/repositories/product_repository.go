package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/shashiranjanraj/duka/app/models"
	"github.com/shashiranjanraj/duka/pkg/storage"
)

// ProductRepository reads and writes the catalog, a JSON array of products
// kept in a single file on a storage disk. Every read goes to the disk so
// admin edits are visible immediately.
type ProductRepository struct {
	disk storage.Disk
	path string

	// writes serializes admin read-modify-write cycles.
	writes sync.Mutex
}

func NewProductRepository(disk storage.Disk, path string) *ProductRepository {
	return &ProductRepository{disk: disk, path: path}
}

// All returns every product in file order. A missing or blank file is an
// empty catalog.
func (r *ProductRepository) All(ctx context.Context) ([]models.Product, error) {
	raw, err := r.disk.Get(ctx, r.path)
	if errors.Is(err, storage.ErrNotExist) {
		return []models.Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: read: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return []models.Product{}, nil
	}

	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", r.path, err)
	}
	return products, nil
}

// FindByID returns ErrProductNotFound when id is unknown.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (models.Product, error) {
	products, err := r.All(ctx)
	if err != nil {
		return models.Product{}, err
	}
	p, ok := lo.Find(products, func(p models.Product) bool { return p.ID == id })
	if !ok {
		return models.Product{}, fmt.Errorf("%w: %q", ErrProductNotFound, id)
	}
	return p, nil
}

// ByCategory matches category names case-insensitively.
func (r *ProductRepository) ByCategory(ctx context.Context, category string) ([]models.Product, error) {
	products, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(products, func(p models.Product, _ int) bool {
		return strings.EqualFold(p.Category, category)
	}), nil
}

// Categories returns the sorted distinct category names.
func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	products, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	cats := lo.Uniq(lo.Map(products, func(p models.Product, _ int) string { return p.Category }))
	sort.Strings(cats)
	return cats, nil
}

// Create assigns the next id (catalog size + 1) and appends p.
func (r *ProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	r.writes.Lock()
	defer r.writes.Unlock()

	products, err := r.All(ctx)
	if err != nil {
		return models.Product{}, err
	}

	p.ID = nextID(products)
	products = append(products, p)
	if err := r.save(ctx, products); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// Update applies fn to the stored product with id and saves the catalog.
func (r *ProductRepository) Update(ctx context.Context, id string, fn func(*models.Product)) (models.Product, error) {
	r.writes.Lock()
	defer r.writes.Unlock()

	products, err := r.All(ctx)
	if err != nil {
		return models.Product{}, err
	}

	_, idx, ok := lo.FindIndexOf(products, func(p models.Product) bool { return p.ID == id })
	if !ok {
		return models.Product{}, fmt.Errorf("%w: %q", ErrProductNotFound, id)
	}

	fn(&products[idx])
	products[idx].ID = id
	if err := r.save(ctx, products); err != nil {
		return models.Product{}, err
	}
	return products[idx], nil
}

// Delete removes the product with id. Unknown ids are a no-op.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	r.writes.Lock()
	defer r.writes.Unlock()

	products, err := r.All(ctx)
	if err != nil {
		return err
	}
	kept := lo.Reject(products, func(p models.Product, _ int) bool { return p.ID == id })
	if len(kept) == len(products) {
		return nil
	}
	return r.save(ctx, kept)
}

func (r *ProductRepository) save(ctx context.Context, products []models.Product) error {
	raw, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("catalog: encode: %w", err)
	}
	if err := r.disk.Put(ctx, r.path, raw); err != nil {
		return fmt.Errorf("catalog: write: %w", err)
	}
	return nil
}

// nextID keeps the "count + 1" numbering of existing catalogs but skips ids
// already taken after deletions.
func nextID(products []models.Product) string {
	taken := lo.SliceToMap(products, func(p models.Product) (string, struct{}) { return p.ID, struct{}{} })
	for n := len(products) + 1; ; n++ {
		id := strconv.Itoa(n)
		if _, dup := taken[id]; !dup {
			return id
		}
	}
}
