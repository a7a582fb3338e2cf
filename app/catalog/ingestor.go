package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/okabe/codemart/app/database"
	"github.com/okabe/codemart/app/marketplace"
	"github.com/okabe/codemart/app/secrets"
)

// ItemReconciler reconciles a single search item into the product store
type ItemReconciler interface {
	Run(ctx context.Context, apiKey string, item marketplace.SearchItem) (*database.Product, error)
}

var _ ItemReconciler = (*Reconciler)(nil)

// Ingestor drives the end-to-end flow for one sync profile: credential,
// search, per-item reconciliation, then the store's popularity-ordered
// listing. Live-path failures degrade to the last persisted listing instead
// of failing the caller.
type Ingestor struct {
	secrets    secrets.Provider
	search     SearchClient
	reconciler ItemReconciler
	products   database.ProductRepository
}

func NewIngestor(secretsProvider secrets.Provider, search SearchClient, reconciler ItemReconciler, products database.ProductRepository) *Ingestor {
	return &Ingestor{
		secrets:    secretsProvider,
		search:     search,
		reconciler: reconciler,
		products:   products,
	}
}

func (in *Ingestor) Run(ctx context.Context, profile *Config) ([]database.Product, error) {
	apiKey, err := in.secrets.GetAPIKey(ctx)
	if err != nil {
		slog.Warn("Credential fetch failed, serving persisted listing", "profile", profile.Name, "error", err)
		return in.fallback(ctx, profile, err)
	}

	items, err := in.search.SearchAll(ctx, apiKey, profile.Query, profile.SearchOptions())
	if err != nil {
		slog.Warn("Marketplace search failed, serving persisted listing", "profile", profile.Name, "error", err)
		return in.fallback(ctx, profile, err)
	}

	if len(items) == 0 {
		slog.Info("Search returned no items, serving persisted listing", "profile", profile.Name, "query", profile.Query)
		return in.fallback(ctx, profile, nil)
	}

	batch := in.reconcileAll(ctx, apiKey, profile, items)

	listing, err := in.products.GetAllByPopularity(ctx)
	if err != nil {
		slog.Warn("Failed to read ordered listing, returning reconciled batch", "profile", profile.Name, "error", err)
		return batch, nil
	}

	return listing, nil
}

// reconcileAll fans out per-item reconciliation, bounded by the profile's
// concurrency setting. Items have no required ordering relative to each
// other; a failed item is dropped with a warning.
func (in *Ingestor) reconcileAll(ctx context.Context, apiKey string, profile *Config, items []marketplace.SearchItem) []database.Product {
	var mu sync.Mutex
	var batch []database.Product

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(profile.Settings.Concurrency)

	for _, item := range items {
		g.Go(func() error {
			product, err := in.reconciler.Run(gctx, apiKey, item)
			if err != nil {
				slog.Warn("Item reconciliation failed, dropping item", "profile", profile.Name, "item", item.ID, "error", err)
				return nil
			}

			mu.Lock()
			batch = append(batch, *product)
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait only flushes the group
	_ = g.Wait()

	slog.Info("Batch reconciled", "profile", profile.Name, "searched", len(items), "reconciled", len(batch))

	return batch
}

// fallback serves the last known persisted listing. Only when that is also
// empty or unavailable does ingestion surface an error.
func (in *Ingestor) fallback(ctx context.Context, profile *Config, cause error) ([]database.Product, error) {
	listing, err := in.products.GetAllByPopularity(ctx)
	if err != nil {
		if cause == nil {
			cause = err
		} else {
			cause = fmt.Errorf("%w (fallback read failed: %v)", cause, err)
		}
		return nil, &IngestionError{Query: profile.Query, Err: cause}
	}

	if len(listing) == 0 {
		return nil, &IngestionError{Query: profile.Query, Err: cause}
	}

	slog.Info("Serving persisted listing", "profile", profile.Name, "products", len(listing))
	return listing, nil
}
