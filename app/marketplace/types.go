package marketplace

import (
	"time"
)

// SearchItem is a raw item as returned by the marketplace search endpoint.
// Ephemeral; never persisted directly.
type SearchItem struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	PriceCents     int      `json:"price_cents"`
	AuthorUsername string   `json:"author_username"`
	PreviewURL     string   `json:"preview_url"`
	ThumbnailURL   string   `json:"thumbnail_url"`
	LivePreviewURL string   `json:"live_preview_url"`
	Classification string   `json:"classification,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	NumberOfSales  int      `json:"number_of_sales,omitempty"`
	Rating         *float64 `json:"rating,omitempty"`
}

// PreviewImage is one entry of the detail gallery
type PreviewImage struct {
	LandscapeURL string `json:"landscape_url,omitempty"`
}

// Preview holds the candidate image URLs of a detail record
type Preview struct {
	LandscapePreview         *PreviewImage  `json:"landscape_preview,omitempty"`
	IconWithLandscapePreview *PreviewImage  `json:"icon_with_landscape_preview,omitempty"`
	PreviewImages            []PreviewImage `json:"preview_images,omitempty"`
	PreviewURL               string         `json:"preview_url,omitempty"`
	LivePreviewURL           string         `json:"live_preview_url,omitempty"`
}

// Detail is the extended metadata returned by the per-item detail endpoint
type Detail struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Previews        Preview `json:"previews"`
	URL             string  `json:"url,omitempty"`
	LiveSitePreview string  `json:"live_site_preview,omitempty"`
}

// SearchOptions control pagination of a keyword search
type SearchOptions struct {
	Site         string        // marketplace site, e.g. "codecanyon.net"
	PageSize     int           // items requested per page
	MaxPages     int           // hard cap on pagination
	RequestDelay time.Duration // sleep between page requests
}

func (o SearchOptions) withDefaults() SearchOptions {
	if o.Site == "" {
		o.Site = DefaultSite
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.MaxPages <= 0 {
		o.MaxPages = DefaultMaxPages
	}
	if o.RequestDelay <= 0 {
		o.RequestDelay = DefaultRequestDelay
	}
	return o
}

const (
	DefaultSite         = "codecanyon.net"
	DefaultPageSize     = 30
	DefaultMaxPages     = 3
	DefaultRequestDelay = time.Second
)
