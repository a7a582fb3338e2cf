package catalog

import (
	"context"
	"log/slog"
	"math"
	"strconv"

	"github.com/okabe/codemart/app/database"
	"github.com/okabe/codemart/app/marketplace"
)

// Reconciler converts a raw search item and its detail record into the
// canonical product shape and upserts it. It is the sole writer of the
// products table.
type Reconciler struct {
	details  DetailClient
	products database.ProductRepository
}

func NewReconciler(details DetailClient, products database.ProductRepository) *Reconciler {
	return &Reconciler{
		details:  details,
		products: products,
	}
}

// Run reconciles a single search item. A detail-fetch failure degrades to
// search-level data instead of aborting, and a store failure still returns
// the in-memory product so one bad item never blocks the rest of a batch.
func (r *Reconciler) Run(ctx context.Context, apiKey string, item marketplace.SearchItem) (*database.Product, error) {
	detail, err := r.details.GetDetails(ctx, apiKey, item.ID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("Detail fetch failed, reconciling with search data only", "item", item.ID, "error", err)
		detail = nil
	}

	record := buildRecord(item, detail)

	product, err := r.products.UpsertProduct(ctx, record)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("Store upsert failed, returning in-memory product", "item", item.ID, "error", err)
		fallback := productFromRecord(record)
		return &fallback, nil
	}

	return product, nil
}

func buildRecord(item marketplace.SearchItem, detail *marketplace.Detail) database.ProductRecord {
	category := NormalizeClassification(item.Classification)
	if category == "" {
		category = DeriveCategory(item.Name, item.Description)
	}

	record := database.ProductRecord{
		ID:               strconv.FormatInt(item.ID, 10),
		MarketplaceID:    item.ID,
		Title:            item.Name,
		Description:      item.Description,
		Price:            int(math.Round(float64(item.PriceCents) / 100)),
		Image:            ResolveMainImage(detail, item),
		AdditionalImages: ResolveAdditionalImages(detail),
		Category:         category,
		Tags:             item.Tags,
		Author:           item.AuthorUsername,
		Rating:           item.Rating,
		LivePreviewURL:   item.LivePreviewURL,
	}

	if detail != nil {
		record.DemoURL = detail.LiveSitePreview
		record.SourceURL = detail.URL
		if detail.Previews.LivePreviewURL != "" {
			record.LivePreviewURL = detail.Previews.LivePreviewURL
		}
	}

	return record
}

// productFromRecord builds the in-memory product returned when persistence
// fails. Popularity 1 mirrors what an insert would have assigned.
func productFromRecord(record database.ProductRecord) database.Product {
	return database.Product{
		ID:               record.ID,
		MarketplaceID:    record.MarketplaceID,
		Title:            record.Title,
		Description:      record.Description,
		Price:            record.Price,
		Image:            record.Image,
		AdditionalImages: record.AdditionalImages,
		Category:         record.Category,
		Tags:             record.Tags,
		Author:           record.Author,
		Popularity:       1,
		Rating:           record.Rating,
		DemoURL:          record.DemoURL,
		LivePreviewURL:   record.LivePreviewURL,
		SourceURL:        record.SourceURL,
	}
}
