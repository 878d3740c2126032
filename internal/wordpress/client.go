// Package wordpress is the content store client: list, fetch, publish.
// The pipeline reads pages through it and writes back only at publish.
package wordpress

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// ErrUnauthorized distinguishes credential failures from generic
// transport failure; the orchestrator fails the whole batch on it instead
// of retrying page by page.
var ErrUnauthorized = errors.New("content store rejected credentials")

// PageRecord is one inventory entry from the content store.
type PageRecord struct {
	ID       int
	Slug     string
	Title    string
	Link     string
	Modified time.Time
}

// PageContent is the full fetch result for one page.
type PageContent struct {
	HTML     string
	Title    string
	Link     string
	Modified time.Time
}

// Client talks to the WordPress REST API with an application password.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authHeader string
	perPage    int
}

// NewClient creates a client for siteURL. username+appPassword form the
// Basic auth pair; perPage bounds each inventory request.
func NewClient(siteURL, username, appPassword string, perPage int) *Client {
	creds := base64.StdEncoding.EncodeToString([]byte(username + ":" + appPassword))
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimRight(siteURL, "/") + "/wp-json/wp/v2",
		authHeader: "Basic " + creds,
		perPage:    perPage,
	}
}

type restPage struct {
	ID       int    `json:"id"`
	Slug     string `json:"slug"`
	Link     string `json:"link"`
	Modified string `json:"modified_gmt"`
	Title    struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
	Content struct {
		Rendered string `json:"rendered"`
	} `json:"content"`
}

// ListPages walks the paginated posts collection and returns the full
// inventory. progress, if non-nil, is called after each fetched page of
// results with (loaded, total).
func (c *Client) ListPages(ctx context.Context, progress func(loaded, total int)) ([]PageRecord, error) {
	var records []PageRecord

	page := 1
	totalPages := 1
	totalPosts := 0
	for page <= totalPages {
		reqURL := fmt.Sprintf("%s/posts?per_page=%d&page=%d&_fields=id,slug,link,modified_gmt,title",
			c.baseURL, c.perPage, page)

		body, header, err := c.get(ctx, reqURL)
		if err != nil {
			return nil, err
		}

		if tp := header.Get("X-WP-TotalPages"); tp != "" {
			if n, convErr := strconv.Atoi(tp); convErr == nil && n > 0 {
				totalPages = n
			}
		}
		if tt := header.Get("X-WP-Total"); tt != "" {
			if n, convErr := strconv.Atoi(tt); convErr == nil && n > 0 {
				totalPosts = n
			}
		}

		var batch []restPage
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, fmt.Errorf("failed to decode post list: %w", err)
		}

		for _, p := range batch {
			records = append(records, PageRecord{
				ID:       p.ID,
				Slug:     p.Slug,
				Title:    p.Title.Rendered,
				Link:     p.Link,
				Modified: parseModified(p.Modified),
			})
		}

		if progress != nil {
			// The exact count header beats the page-count estimate, which
			// overstates the total on a partial final page.
			total := totalPosts
			if total == 0 {
				total = totalPages * c.perPage
			}
			progress(len(records), total)
		}
		page++
	}

	log.Debug("inventory loaded", "pages", len(records))
	return records, nil
}

// FetchFullContent fetches one post's rendered HTML.
func (c *Client) FetchFullContent(ctx context.Context, id int) (*PageContent, error) {
	reqURL := fmt.Sprintf("%s/posts/%d", c.baseURL, id)
	body, _, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var p restPage
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to decode post %d: %w", id, err)
	}

	return &PageContent{
		HTML:     p.Content.Rendered,
		Title:    p.Title.Rendered,
		Link:     p.Link,
		Modified: parseModified(p.Modified),
	}, nil
}

// Publish writes the regenerated HTML back to the post.
func (c *Client) Publish(ctx context.Context, id int, html string) error {
	payload, err := json.Marshal(map[string]string{"content": html})
	if err != nil {
		return fmt.Errorf("failed to marshal publish payload: %w", err)
	}

	reqURL := fmt.Sprintf("%s/posts/%d", c.baseURL, id)
	_, _, err = c.do(ctx, http.MethodPost, reqURL, payload)
	if err != nil {
		return fmt.Errorf("failed to publish post %d: %w", id, err)
	}

	log.Info("published", "post_id", id, "bytes", len(html))
	return nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, http.Header, error) {
	return c.do(ctx, http.MethodGet, reqURL, nil)
}

// do runs one authenticated request with bounded retries on 429/5xx.
func (c *Client) do(ctx context.Context, method, reqURL string, payload []byte) ([]byte, http.Header, error) {
	const maxRetries = 3

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Second * time.Duration(1<<uint(attempt-1))
			log.Debug("retrying content store request", "url", reqURL, "attempt", attempt, "delay", delay)
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", c.authHeader)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, reqErr := c.httpClient.Do(req)
		if reqErr != nil {
			lastErr = reqErr
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
			return body, resp.Header, nil
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, nil, fmt.Errorf("status %d from %s: %w", resp.StatusCode, hostOf(reqURL), ErrUnauthorized)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("content store returned status %d", resp.StatusCode)
			continue
		default:
			return nil, nil, fmt.Errorf("content store returned status %d: %s", resp.StatusCode, string(body))
		}
	}

	return nil, nil, fmt.Errorf("content store request failed after retries: %w", lastErr)
}

func parseModified(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func hostOf(reqURL string) string {
	u, err := url.Parse(reqURL)
	if err != nil {
		return reqURL
	}
	return u.Host
}
