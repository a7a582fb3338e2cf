package database

import (
	"time"
)

// Product is a canonical product record mirrored from the marketplace.
// ID is the marketplace item id as a string and is immutable once created.
// Popularity starts at 1 and increments on each successful re-ingestion.
type Product struct {
	ID               string     `json:"id"`
	MarketplaceID    int64      `json:"marketplace_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Price            int        `json:"price"` // major currency units
	Image            string     `json:"image"`
	AdditionalImages []string   `json:"additional_images"`
	Category         string     `json:"category,omitempty"`
	Tags             []string   `json:"tags"`
	Author           string     `json:"author,omitempty"`
	Popularity       int        `json:"popularity"`
	Rating           *float64   `json:"rating,omitempty"`
	DemoURL          string     `json:"demo_url,omitempty"`
	LivePreviewURL   string     `json:"live_preview_url,omitempty"`
	SourceURL        string     `json:"source_url,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Review is a user review attached to a product
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
