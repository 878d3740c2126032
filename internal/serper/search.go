// Package serper provides the web-search capability used to gather
// competitor snippets for the strategy prompt.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// OrganicResult is one ranked search hit.
type OrganicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// PeopleAlsoAsk is one related question surfaced by the engine.
type PeopleAlsoAsk struct {
	Question string `json:"question"`
	Snippet  string `json:"snippet"`
}

// Results is the portion of the response the pipeline consumes.
type Results struct {
	Organic       []OrganicResult `json:"organic"`
	PeopleAlsoAsk []PeopleAlsoAsk `json:"peopleAlsoAsk"`
}

// Client calls the Serper search API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// NewClient creates a search client. An empty apiKey disables search; the
// pipeline then runs without competitor snippets.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		endpoint:   endpoint,
		apiKey:     apiKey,
	}
}

// Enabled reports whether search is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Search runs one query and returns organic results plus related questions.
func (c *Client) Search(ctx context.Context, query string) (*Results, error) {
	body, err := json.Marshal(map[string]string{"q": query})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned status %d", resp.StatusCode)
	}

	var results Results
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return &results, nil
}
