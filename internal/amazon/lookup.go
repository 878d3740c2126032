// Package amazon provides the marketplace lookup capability: a live API
// call or a deterministic stand-in, both behind a TTL cache. The pipeline
// treats either uniformly and never assumes live pricing accuracy.
package amazon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Papalexios/amz-neuralmesh/internal/cache"
)

// Product is the lookup result. A nil *Product with a nil error means the
// marketplace had no match.
type Product struct {
	Title       string   `json:"title"`
	ImageURL    string   `json:"imageUrl"`
	Price       string   `json:"price"`
	URL         string   `json:"url"`
	ASIN        string   `json:"asin,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	ReviewCount int      `json:"reviewCount,omitempty"`
	Features    []string `json:"features,omitempty"`
}

// Lookup is the capability the pipeline consumes.
type Lookup interface {
	Lookup(ctx context.Context, productQuery string) (*Product, error)
}

// Client performs live lookups against a product API endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// NewClient creates a live lookup client.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   endpoint,
		apiKey:     apiKey,
	}
}

// Lookup queries the product API for the best match.
func (c *Client) Lookup(ctx context.Context, productQuery string) (*Product, error) {
	reqURL := fmt.Sprintf("%s?q=%s", c.endpoint, url.QueryEscape(productQuery))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("product lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product lookup returned status %d", resp.StatusCode)
	}

	var p Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode lookup response: %w", err)
	}
	if p.Title == "" {
		return nil, nil
	}
	return &p, nil
}

// Cached wraps a Lookup with the injected TTL cache so repeated runs do
// not re-hit the marketplace.
type Cached struct {
	inner Lookup
	store cache.Cache
	ttl   time.Duration
}

// NewCached wraps inner with store.
func NewCached(inner Lookup, store cache.Cache, ttl time.Duration) *Cached {
	return &Cached{inner: inner, store: store, ttl: ttl}
}

// Lookup serves from cache when possible. Cache failures degrade to a
// direct lookup; they never fail the call.
func (c *Cached) Lookup(ctx context.Context, productQuery string) (*Product, error) {
	key := "amz:" + productQuery

	if data, err := c.store.Get(ctx, key); err == nil {
		var p Product
		if jsonErr := json.Unmarshal(data, &p); jsonErr == nil {
			return &p, nil
		}
	}

	p, err := c.inner.Lookup(ctx, productQuery)
	if err != nil || p == nil {
		return p, err
	}

	if data, jsonErr := json.Marshal(p); jsonErr == nil {
		if setErr := c.store.Set(ctx, key, data, c.ttl); setErr != nil {
			log.Warn("failed to cache product lookup", "query", productQuery, "error", setErr)
		}
	}
	return p, nil
}
