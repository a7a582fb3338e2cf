package database

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

var _ ProductRepository = (*ProductRepo)(nil)

// ProductRepo handles database operations for products
type ProductRepo struct {
	db *DB
}

func NewProductRepository(db *DB) *ProductRepo {
	return &ProductRepo{db: db}
}

const productColumns = `
	id, COALESCE(marketplace_id, 0), title, COALESCE(description, ''),
	price, image, COALESCE(additional_images, '{}'), COALESCE(category, ''),
	COALESCE(tags, '{}'), COALESCE(author, ''), popularity, rating,
	COALESCE(demo_url, ''), COALESCE(live_preview_url, ''), COALESCE(source_url, ''),
	created_at, updated_at`

// UpsertProduct inserts a new product with popularity 1 or updates an existing
// one, incrementing its popularity. The merge happens in a single statement so
// there is no lost-update window between lookup and write.
func (r *ProductRepo) UpsertProduct(ctx context.Context, record ProductRecord) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO products (
			id, marketplace_id, title, description, price, image,
			additional_images, category, tags, author, popularity, rating,
			demo_url, live_preview_url, source_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, NULLIF($10, ''), 1, $11, NULLIF($12, ''), NULLIF($13, ''), NULLIF($14, ''))
		ON CONFLICT (id) DO UPDATE SET
			marketplace_id = EXCLUDED.marketplace_id,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			image = EXCLUDED.image,
			additional_images = EXCLUDED.additional_images,
			category = EXCLUDED.category,
			tags = EXCLUDED.tags,
			author = EXCLUDED.author,
			popularity = products.popularity + 1,
			rating = EXCLUDED.rating,
			demo_url = EXCLUDED.demo_url,
			live_preview_url = EXCLUDED.live_preview_url,
			source_url = EXCLUDED.source_url,
			updated_at = NOW()
		RETURNING `+productColumns,
		record.ID, record.MarketplaceID, record.Title, record.Description,
		record.Price, record.Image, pq.Array(record.AdditionalImages),
		record.Category, pq.Array(record.Tags), record.Author, record.Rating,
		record.DemoURL, record.LivePreviewURL, record.SourceURL)

	product, err := scanProduct(row)
	if err != nil {
		return nil, &StoreError{Op: "upsert_product", Err: err}
	}

	return product, nil
}

// GetProduct retrieves a product by its id, returning nil when not found
func (r *ProductRepo) GetProduct(ctx context.Context, id string) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id)

	product, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &StoreError{Op: "get_product", Err: err}
	}

	return product, nil
}

// GetAllByPopularity returns the full product listing ordered by popularity
func (r *ProductRepo) GetAllByPopularity(ctx context.Context) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY popularity DESC, updated_at DESC
	`)
	if err != nil {
		return nil, &StoreError{Op: "get_all_by_popularity", Err: err}
	}
	defer rows.Close()

	return scanProducts(rows)
}

// SearchProducts returns products matching an optional category and keyword,
// ordered by popularity
func (r *ProductRepo) SearchProducts(ctx context.Context, category, query string) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
		ORDER BY popularity DESC, updated_at DESC
	`, category, query)
	if err != nil {
		return nil, &StoreError{Op: "search_products", Err: err}
	}
	defer rows.Close()

	return scanProducts(rows)
}

// GetProductCount returns the total number of products
func (r *ProductRepo) GetProductCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count)
	if err != nil {
		return 0, &StoreError{Op: "get_product_count", Err: err}
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var product Product
	err := row.Scan(
		&product.ID, &product.MarketplaceID, &product.Title, &product.Description,
		&product.Price, &product.Image, pq.Array(&product.AdditionalImages),
		&product.Category, pq.Array(&product.Tags), &product.Author,
		&product.Popularity, &product.Rating, &product.DemoURL,
		&product.LivePreviewURL, &product.SourceURL,
		&product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func scanProducts(rows *sql.Rows) ([]Product, error) {
	var products []Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, &StoreError{Op: "scan_product", Err: err}
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "iterate_products", Err: err}
	}

	return products, nil
}
