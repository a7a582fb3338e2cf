package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	searchPath = "/v1/discovery/search/search/item"
	detailPath = "/v3/market/catalog/item"

	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 2
)

// Client talks to the marketplace search and catalog endpoints
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	maxRetries int
}

func NewClient(baseURL, userAgent string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: httpClient,
		maxRetries: defaultMaxRetries,
	}
}

// Search fetches a single page of keyword search results, sorted by the
// marketplace's own sales ranking. A response without a valid "matches" list
// is treated as an empty page rather than an error.
func (c *Client) Search(ctx context.Context, apiKey, query string, page int, opts SearchOptions) ([]SearchItem, error) {
	opts = opts.withDefaults()

	params := url.Values{}
	params.Set("term", query)
	params.Set("site", opts.Site)
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(opts.PageSize))
	params.Set("sort_by", "sales")

	body, err := c.doGET(ctx, "search", c.baseURL+searchPath+"?"+params.Encode(), apiKey)
	if err != nil {
		return nil, err
	}

	var response struct {
		Matches json.RawMessage `json:"matches"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		slog.Warn("Malformed search response, treating as empty page", "page", page, "error", err)
		return nil, nil
	}

	if len(response.Matches) == 0 {
		return nil, nil
	}

	var items []SearchItem
	if err := json.Unmarshal(response.Matches, &items); err != nil {
		slog.Warn("Search matches field is not a list, treating as empty page", "page", page, "error", err)
		return nil, nil
	}

	return items, nil
}

// SearchAll pages through a keyword search until a page comes back empty,
// shorter than the page size, or the page cap is reached. Pages are fetched
// strictly in order; the configured delay is applied between page requests.
// Items seen on overlapping pages are returned only once.
func (c *Client) SearchAll(ctx context.Context, apiKey, query string, opts SearchOptions) ([]SearchItem, error) {
	opts = opts.withDefaults()

	limiter := rate.NewLimiter(rate.Every(opts.RequestDelay), 1)

	var all []SearchItem
	seen := make(map[int64]struct{})

	for page := 1; page <= opts.MaxPages; page++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		items, err := c.Search(ctx, apiKey, query, page, opts)
		if err != nil {
			return nil, err
		}

		if len(items) == 0 {
			break
		}

		for _, item := range items {
			if _, ok := seen[item.ID]; ok {
				continue
			}
			seen[item.ID] = struct{}{}
			all = append(all, item)
		}

		slog.Debug("Search page fetched", "query", query, "page", page, "items", len(items), "total", len(all))

		// A short page signals the last page
		if len(items) < opts.PageSize {
			break
		}
	}

	return all, nil
}

// GetDetails fetches extended metadata for a single item
func (c *Client) GetDetails(ctx context.Context, apiKey string, itemID int64) (*Detail, error) {
	u := fmt.Sprintf("%s%s?id=%d", c.baseURL, detailPath, itemID)

	body, err := c.doGET(ctx, "details", u, apiKey)
	if err != nil {
		return nil, err
	}

	var detail Detail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, &Error{Kind: KindServerError, Op: "details", Err: fmt.Errorf("malformed detail response: %w", err)}
	}

	return &detail, nil
}

// doGET performs an authenticated GET with bounded retry on transient
// failures. The retry policy is deliberately separate from the pagination
// delay: one handles failures, the other handles rate limits.
func (c *Client) doGET(ctx context.Context, op, url, apiKey string) ([]byte, error) {
	var lastErr *Error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			slog.Debug("Retrying marketplace request", "op", op, "attempt", attempt, "backoff", backoff.String())
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, err := c.attemptGET(ctx, op, url, apiKey)
		if err == nil {
			return body, nil
		}

		lastErr = err
		if !err.Retryable() {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) attemptGET(ctx context.Context, op, url, apiKey string) ([]byte, *Error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, &Error{Kind: KindServerError, Op: op, Err: err}
	}

	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(op, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(op, err)
	}

	return body, nil
}
