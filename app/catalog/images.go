package catalog

import (
	"github.com/okabe/codemart/app/marketplace"
)

// FallbackImageURL is the stable placeholder shown when an item has no usable
// image candidate. Persisted products are guaranteed a non-empty image.
const FallbackImageURL = "https://images.unsplash.com/photo-1486312338219-ce68d2c6f44d?w=800&q=80"

// ResolveMainImage picks the best representative image for an item. The
// precedence order is a behavioral contract: detail-level landscape variants
// first, then the detail gallery and generic previews, then the search-level
// candidates, and finally the placeholder.
func ResolveMainImage(detail *marketplace.Detail, item marketplace.SearchItem) string {
	var candidates []string

	if detail != nil {
		previews := detail.Previews
		if previews.LandscapePreview != nil {
			candidates = append(candidates, previews.LandscapePreview.LandscapeURL)
		}
		if previews.IconWithLandscapePreview != nil {
			candidates = append(candidates, previews.IconWithLandscapePreview.LandscapeURL)
		}
		if len(previews.PreviewImages) > 0 {
			candidates = append(candidates, previews.PreviewImages[0].LandscapeURL)
		}
		candidates = append(candidates, previews.PreviewURL, previews.LivePreviewURL)
	}

	candidates = append(candidates, item.LivePreviewURL, item.PreviewURL, item.ThumbnailURL)

	for _, url := range candidates {
		if url != "" {
			return url
		}
	}

	return FallbackImageURL
}

// ResolveAdditionalImages returns the detail gallery entries after the first
// one. The marketplace repeats the main image as the first gallery entry, so
// it is skipped to avoid visual duplication.
func ResolveAdditionalImages(detail *marketplace.Detail) []string {
	if detail == nil || len(detail.Previews.PreviewImages) <= 1 {
		return nil
	}

	var images []string
	for _, preview := range detail.Previews.PreviewImages[1:] {
		if preview.LandscapeURL != "" {
			images = append(images, preview.LandscapeURL)
		}
	}

	return images
}
