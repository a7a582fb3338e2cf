package database

import (
	"context"
)

// ProductRecord is a normalized product ready to be persisted. Popularity is
// assigned by the store: 1 on insert, previous value + 1 on update.
type ProductRecord struct {
	ID               string
	MarketplaceID    int64
	Title            string
	Description      string
	Price            int
	Image            string
	AdditionalImages []string
	Category         string
	Tags             []string
	Author           string
	Rating           *float64
	DemoURL          string
	LivePreviewURL   string
	SourceURL        string
}

type ProductRepository interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
	GetAllByPopularity(ctx context.Context) ([]Product, error)
	SearchProducts(ctx context.Context, category, query string) ([]Product, error)
	GetProductCount(ctx context.Context) (int, error)

	UpsertProduct(ctx context.Context, record ProductRecord) (*Product, error)
}

type ReviewRepository interface {
	GetReviews(ctx context.Context, productID string) ([]Review, error)
	GetReviewCount(ctx context.Context) (int, error)

	CreateReview(ctx context.Context, productID, userID string, rating int, comment string) (*Review, error)
	DeleteReview(ctx context.Context, id string) error
}

type BackupRepository interface {
	BackupProducts(ctx context.Context) (string, error)
	PruneBackups(ctx context.Context, keep int) ([]string, error)
}
