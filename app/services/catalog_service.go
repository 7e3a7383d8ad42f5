package services

import (
	"context"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/duka/app/models"
	"github.com/shashiranjanraj/duka/app/repositories"
	"github.com/shashiranjanraj/duka/pkg/money"
)

const (
	bestSellerCount = 4
	featuredCount   = 4
	searchMinLen    = 2
	searchLimit     = 8
)

// ProductInput is the admin form for creating or editing a product.
type ProductInput struct {
	Name        string
	Category    string
	Price       decimal.Decimal
	Description string
	InStock     bool
	Sizes       []string
	Colors      []string
	// RemovedImages are image refs to drop from an existing product.
	RemovedImages []string
}

// CatalogStats backs the admin dashboard.
type CatalogStats struct {
	TotalProducts int             `json:"total_products"`
	InStock       int             `json:"in_stock_count"`
	OutOfStock    int             `json:"out_of_stock_count"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

// CatalogService answers storefront queries over the catalog and applies
// admin edits.
type CatalogService struct {
	products *repositories.ProductRepository
	images   *ImageStore
	now      func() time.Time
}

func NewCatalogService(products *repositories.ProductRepository, images *ImageStore) *CatalogService {
	return &CatalogService{products: products, images: images, now: time.Now}
}

func (s *CatalogService) All(ctx context.Context) ([]models.Product, error) {
	return s.products.All(ctx)
}

func (s *CatalogService) FindByID(ctx context.Context, id string) (models.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *CatalogService) ByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return s.products.ByCategory(ctx, category)
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.products.Categories(ctx)
}

// BestSellers is the first four catalog entries.
func (s *CatalogService) BestSellers(ctx context.Context) ([]models.Product, error) {
	all, err := s.products.All(ctx)
	if err != nil {
		return nil, err
	}
	return window(all, 0, bestSellerCount), nil
}

// Featured is the four entries after the best sellers.
func (s *CatalogService) Featured(ctx context.Context) ([]models.Product, error) {
	all, err := s.products.All(ctx)
	if err != nil {
		return nil, err
	}
	return window(all, bestSellerCount, featuredCount), nil
}

// Search matches q case-insensitively against name and description.
// Queries shorter than two characters return nothing; at most eight
// products are returned.
func (s *CatalogService) Search(ctx context.Context, q string) ([]models.Product, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	if len([]rune(q)) < searchMinLen {
		return []models.Product{}, nil
	}

	all, err := s.products.All(ctx)
	if err != nil {
		return nil, err
	}
	hits := lo.Filter(all, func(p models.Product, _ int) bool {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q)
	})
	return window(hits, 0, searchLimit), nil
}

// CategoryBySlug resolves a URL slug such as "home-living" to products by
// trying the spellings category names use ("Home & Living", "home living").
// The first variant with any products wins.
func (s *CatalogService) CategoryBySlug(ctx context.Context, slug string) ([]models.Product, error) {
	all, err := s.products.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, variant := range slugVariants(slug) {
		hits := lo.Filter(all, func(p models.Product, _ int) bool {
			return strings.EqualFold(p.Category, variant)
		})
		if len(hits) > 0 {
			return hits, nil
		}
	}
	return []models.Product{}, nil
}

// CategoryTitle turns a slug into a display title: "home-living" → "Home Living".
func CategoryTitle(slug string) string {
	words := strings.Fields(strings.ReplaceAll(slug, "-", " "))
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func slugVariants(slug string) []string {
	return lo.Uniq([]string{
		slug,
		strings.ReplaceAll(slug, "-", " & "),
		strings.ReplaceAll(slug, "-", " "),
		strings.ReplaceAll(slug, " ", " & "),
		strings.ReplaceAll(slug, " & ", "-"),
		strings.ReplaceAll(slug, " ", "-"),
	})
}

// Create saves a new product. Uploaded images are stored first; with none
// the default image is used.
func (s *CatalogService) Create(ctx context.Context, in ProductInput, uploads []Upload) (models.Product, error) {
	images, err := s.images.SaveAll(ctx, uploads)
	if err != nil {
		return models.Product{}, err
	}
	if len(images) == 0 {
		images = []string{models.DefaultImage}
	}

	created := s.now()
	p := models.Product{
		Image:     images[0],
		Images:    images,
		CreatedAt: &created,
	}
	apply(&p, in)
	return s.products.Create(ctx, p)
}

// Update edits an existing product: removed images are dropped, new
// uploads appended, and the first remaining image becomes the primary.
func (s *CatalogService) Update(ctx context.Context, id string, in ProductInput, uploads []Upload) (models.Product, error) {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return models.Product{}, err
	}
	added, err := s.images.SaveAll(ctx, uploads)
	if err != nil {
		return models.Product{}, err
	}

	return s.products.Update(ctx, id, func(p *models.Product) {
		images := lo.Without(p.Gallery(), in.RemovedImages...)
		images = append(images, added...)
		if len(images) > 0 {
			p.Image = images[0]
			p.Images = images
		}
		apply(p, in)
	})
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

// Stats counts stock states and sums list prices. Products without a stock
// flag count as in stock.
func (s *CatalogService) Stats(ctx context.Context) (CatalogStats, error) {
	all, err := s.products.All(ctx)
	if err != nil {
		return CatalogStats{}, err
	}
	inStock := lo.CountBy(all, models.Product.Available)
	value := money.Zero
	for _, p := range all {
		value = value.Add(p.Price)
	}
	return CatalogStats{
		TotalProducts: len(all),
		InStock:       inStock,
		OutOfStock:    len(all) - inStock,
		TotalValue:    value,
	}, nil
}

func apply(p *models.Product, in ProductInput) {
	inStock := in.InStock
	p.Name = strings.TrimSpace(in.Name)
	p.Category = strings.TrimSpace(in.Category)
	p.Price = in.Price
	p.Description = strings.TrimSpace(in.Description)
	p.InStock = &inStock
	p.Sizes = cleanList(in.Sizes)
	p.Colors = cleanList(in.Colors)
}

func cleanList(values []string) []string {
	out := lo.FilterMap(values, func(v string, _ int) (string, bool) {
		v = strings.TrimSpace(v)
		return v, v != ""
	})
	if len(out) == 0 {
		return nil
	}
	return out
}

func window(products []models.Product, offset, n int) []models.Product {
	if offset >= len(products) {
		return []models.Product{}
	}
	end := min(offset+n, len(products))
	return append([]models.Product{}, products[offset:end]...)
}
