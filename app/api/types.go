package api

import (
	"context"

	"github.com/okabe/codemart/app/catalog"
	"github.com/okabe/codemart/app/database"
	"github.com/okabe/codemart/app/marketplace"
	"github.com/okabe/codemart/app/secrets"
	"github.com/okabe/codemart/app/tasks"
)

// MarketplaceSearcher serves the authenticated search proxy endpoint
type MarketplaceSearcher interface {
	Search(ctx context.Context, apiKey, query string, page int, opts marketplace.SearchOptions) ([]marketplace.SearchItem, error)
}

var _ MarketplaceSearcher = (*marketplace.Client)(nil)

type Handler struct {
	productRepo database.ProductRepository
	reviewRepo  database.ReviewRepository
	configCache *catalog.ConfigCache
	ingestor    tasks.CatalogIngestor
	scheduler   tasks.TaskSchedulerInterface
	searcher    MarketplaceSearcher
	secrets     secrets.Provider
}
