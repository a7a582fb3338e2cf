package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/okabe/codemart/app/marketplace"
)

// SearchClient pages through a keyword search against the marketplace
type SearchClient interface {
	SearchAll(ctx context.Context, apiKey, query string, opts marketplace.SearchOptions) ([]marketplace.SearchItem, error)
}

// DetailClient fetches extended metadata for a single marketplace item
type DetailClient interface {
	GetDetails(ctx context.Context, apiKey string, itemID int64) (*marketplace.Detail, error)
}

var _ SearchClient = (*marketplace.Client)(nil)
var _ DetailClient = (*marketplace.Client)(nil)

// IngestionError is raised only when both the live marketplace path and the
// fallback to the persisted listing are unavailable
type IngestionError struct {
	Query string
	Err   error
}

func (e *IngestionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ingestion failed for query '%s': live fetch and fallback both unavailable: %v", e.Query, e.Err)
	}
	return fmt.Sprintf("ingestion failed for query '%s': live fetch and fallback both unavailable", e.Query)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// Configuration types

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	Query    string         `yaml:"query"`
	Site     string         `yaml:"site"`
	Settings ConfigSettings `yaml:"settings"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	PageSize        int  `yaml:"page_size"`
	MaxPages        int  `yaml:"max_pages"`
	RequestDelayMs  int  `yaml:"request_delay_ms"` // sleep between search pages
	Concurrency     int  `yaml:"concurrency"`      // detail-fetch fan-out limit
}

// SearchOptions maps profile settings onto marketplace pagination options
func (c *Config) SearchOptions() marketplace.SearchOptions {
	return marketplace.SearchOptions{
		Site:         c.Site,
		PageSize:     c.Settings.PageSize,
		MaxPages:     c.Settings.MaxPages,
		RequestDelay: time.Duration(c.Settings.RequestDelayMs) * time.Millisecond,
	}
}
