package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/okabe/codemart/app/database"
	"github.com/okabe/codemart/app/marketplace"
)

// In-memory mocks shared by the reconciler and ingestor tests.

type mockDetailClient struct {
	mu      sync.Mutex
	details map[int64]*marketplace.Detail
	err     error
	errIDs  map[int64]error
	calls   int
}

func (m *mockDetailClient) GetDetails(ctx context.Context, apiKey string, itemID int64) (*marketplace.Detail, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if err, ok := m.errIDs[itemID]; ok {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	if detail, ok := m.details[itemID]; ok {
		return detail, nil
	}
	return nil, &marketplace.Error{Kind: marketplace.KindNotFound, StatusCode: 404, Op: "details"}
}

type mockProductRepo struct {
	mu        sync.Mutex
	products  map[string]database.Product
	upsertErr error
	listErr   error
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[string]database.Product)}
}

func (m *mockProductRepo) UpsertProduct(ctx context.Context, record database.ProductRecord) (*database.Product, error) {
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	product, exists := m.products[record.ID]
	if exists {
		product.Popularity++
		product.UpdatedAt = now
	} else {
		product = database.Product{Popularity: 1, CreatedAt: now, UpdatedAt: now}
	}

	product.ID = record.ID
	product.MarketplaceID = record.MarketplaceID
	product.Title = record.Title
	product.Description = record.Description
	product.Price = record.Price
	product.Image = record.Image
	product.AdditionalImages = record.AdditionalImages
	product.Category = record.Category
	product.Tags = record.Tags
	product.Author = record.Author
	product.Rating = record.Rating
	product.DemoURL = record.DemoURL
	product.LivePreviewURL = record.LivePreviewURL
	product.SourceURL = record.SourceURL

	m.products[record.ID] = product
	return &product, nil
}

func (m *mockProductRepo) GetProduct(ctx context.Context, id string) (*database.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	product, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	return &product, nil
}

func (m *mockProductRepo) GetAllByPopularity(ctx context.Context) ([]database.Product, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	products := make([]database.Product, 0, len(m.products))
	for _, product := range m.products {
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].Popularity > products[j].Popularity
	})
	return products, nil
}

func (m *mockProductRepo) SearchProducts(ctx context.Context, category, query string) ([]database.Product, error) {
	return m.GetAllByPopularity(ctx)
}

func (m *mockProductRepo) GetProductCount(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products), nil
}

var _ database.ProductRepository = (*mockProductRepo)(nil)

func searchItem(id int64) marketplace.SearchItem {
	return marketplace.SearchItem{
		ID:             id,
		Name:           "Test Product",
		Description:    "A product for testing",
		PriceCents:     2900,
		AuthorUsername: "testauthor",
		PreviewURL:     "https://cdn.example.com/search-preview.jpg",
		ThumbnailURL:   "https://cdn.example.com/search-thumb.jpg",
		LivePreviewURL: "https://cdn.example.com/search-live.jpg",
		Tags:           []string{"php", "laravel"},
	}
}

func TestReconciler_NewProduct(t *testing.T) {
	details := &mockDetailClient{details: map[int64]*marketplace.Detail{1: fullDetail()}}
	repo := newMockProductRepo()
	reconciler := NewReconciler(details, repo)

	product, err := reconciler.Run(context.Background(), "test-key", searchItem(1))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if product.ID != "1" {
		t.Errorf("Expected id '1', got %q", product.ID)
	}
	if product.Price != 29 {
		t.Errorf("Expected price 29, got %d", product.Price)
	}
	if product.Popularity != 1 {
		t.Errorf("Expected popularity 1 for new product, got %d", product.Popularity)
	}
	if product.Image != "https://cdn.example.com/landscape.jpg" {
		t.Errorf("Expected landscape preview image, got %s", product.Image)
	}
	if len(product.AdditionalImages) != 2 {
		t.Errorf("Expected 2 additional images, got %d", len(product.AdditionalImages))
	}
	if product.Author != "testauthor" {
		t.Errorf("Expected author 'testauthor', got %q", product.Author)
	}
}

func TestReconciler_PopularityIncrement(t *testing.T) {
	details := &mockDetailClient{details: map[int64]*marketplace.Detail{1: fullDetail()}}
	repo := newMockProductRepo()
	reconciler := NewReconciler(details, repo)

	item := searchItem(1)

	first, err := reconciler.Run(context.Background(), "test-key", item)
	if err != nil {
		t.Fatalf("First reconciliation failed: %v", err)
	}
	second, err := reconciler.Run(context.Background(), "test-key", item)
	if err != nil {
		t.Fatalf("Second reconciliation failed: %v", err)
	}

	if first.Popularity != 1 {
		t.Errorf("Expected popularity 1 after first run, got %d", first.Popularity)
	}
	if second.Popularity != 2 {
		t.Errorf("Expected popularity 2 after second run, got %d", second.Popularity)
	}
	if first.ID != second.ID {
		t.Errorf("Product id changed across reconciliations: %q vs %q", first.ID, second.ID)
	}
}

func TestReconciler_DetailFailureDegrades(t *testing.T) {
	details := &mockDetailClient{err: &marketplace.Error{Kind: marketplace.KindNetworkTimeout, Op: "details"}}
	repo := newMockProductRepo()
	reconciler := NewReconciler(details, repo)

	product, err := reconciler.Run(context.Background(), "test-key", searchItem(3))
	if err != nil {
		t.Fatalf("Detail failure should not abort reconciliation, got: %v", err)
	}

	// Without detail data the search-level live preview URL wins
	if product.Image != "https://cdn.example.com/search-live.jpg" {
		t.Errorf("Expected search-level image candidate, got %s", product.Image)
	}
	if len(product.AdditionalImages) != 0 {
		t.Errorf("Expected no additional images without detail, got %d", len(product.AdditionalImages))
	}

	stored, _ := repo.GetProduct(context.Background(), "3")
	if stored == nil {
		t.Fatal("Expected product to be persisted despite detail failure")
	}
}

func TestReconciler_StoreFailureReturnsInMemory(t *testing.T) {
	details := &mockDetailClient{details: map[int64]*marketplace.Detail{1: fullDetail()}}
	repo := newMockProductRepo()
	repo.upsertErr = &database.StoreError{Op: "upsert_product", Err: errors.New("connection refused")}
	reconciler := NewReconciler(details, repo)

	product, err := reconciler.Run(context.Background(), "test-key", searchItem(1))
	if err != nil {
		t.Fatalf("Store failure should not abort reconciliation, got: %v", err)
	}
	if product == nil {
		t.Fatal("Expected in-memory product despite store failure")
	}
	if product.Popularity != 1 {
		t.Errorf("Expected popularity 1 on in-memory product, got %d", product.Popularity)
	}
}

func TestReconciler_PriceRounding(t *testing.T) {
	details := &mockDetailClient{details: map[int64]*marketplace.Detail{}}
	repo := newMockProductRepo()
	reconciler := NewReconciler(details, repo)

	tests := []struct {
		cents    int
		expected int
	}{
		{2900, 29},
		{2950, 30},
		{2949, 29},
		{0, 0},
		{50, 1},
		{49, 0},
	}

	for i, tt := range tests {
		item := searchItem(int64(100 + i))
		item.PriceCents = tt.cents

		product, err := reconciler.Run(context.Background(), "test-key", item)
		if err != nil {
			t.Fatalf("Reconciliation failed: %v", err)
		}
		if product.Price != tt.expected {
			t.Errorf("price_cents %d: expected price %d, got %d", tt.cents, tt.expected, product.Price)
		}
		if product.Price < 0 {
			t.Errorf("Price must be non-negative, got %d", product.Price)
		}
	}
}

func TestBuildRecord_CategoryFromClassification(t *testing.T) {
	item := searchItem(1)
	item.Classification = "php-scripts/ecommerce"

	record := buildRecord(item, nil)
	if record.Category != "ecommerce" {
		t.Errorf("Expected category 'ecommerce', got %q", record.Category)
	}
}

func TestBuildRecord_CategoryDerivedWithoutClassification(t *testing.T) {
	item := searchItem(1)
	item.Name = "Admin Dashboard Pro"

	record := buildRecord(item, nil)
	if record.Category != "dashboard" {
		t.Errorf("Expected derived category 'dashboard', got %q", record.Category)
	}
}
