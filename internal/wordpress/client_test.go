package wordpress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPagesPaginates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NotEmpty(t, r.Header.Get("Authorization"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Header().Set("X-WP-TotalPages", "2")
		w.Header().Set("X-WP-Total", "2")

		batch := []map[string]any{
			{
				"id":           page*10 + 1,
				"slug":         "post-a",
				"link":         "https://example.com/post-a",
				"modified_gmt": "2024-01-15T10:00:00",
				"title":        map[string]string{"rendered": "Post A"},
			},
		}
		json.NewEncoder(w).Encode(batch)
	}))
	t.Cleanup(server.Close)

	c := NewClient(server.URL, "user", "pass", 100)
	c.baseURL = server.URL

	var progressCalls, lastTotal int
	pages, err := c.ListPages(context.Background(), func(loaded, total int) {
		progressCalls++
		lastTotal = total
	})
	require.NoError(t, err)

	assert.Len(t, pages, 2, "one record per result page")
	assert.Equal(t, 2, progressCalls)
	assert.Equal(t, 2, lastTotal, "exact post count, not pages*per_page")
	assert.Equal(t, "Post A", pages[0].Title)
	assert.Equal(t, 2024, pages[0].Modified.Year())
}

func TestFetchFullContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/posts/42")
		json.NewEncoder(w).Encode(map[string]any{
			"id":           42,
			"link":         "https://example.com/answer",
			"modified_gmt": "2023-06-01T00:00:00",
			"title":        map[string]string{"rendered": "The Answer"},
			"content":      map[string]string{"rendered": "<p>forty-two</p>"},
		})
	}))
	t.Cleanup(server.Close)

	c := NewClient(server.URL, "user", "pass", 100)
	c.baseURL = server.URL

	got, err := c.FetchFullContent(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "<p>forty-two</p>", got.HTML)
	assert.Equal(t, "The Answer", got.Title)
}

func TestUnauthorizedIsDistinguishable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	c := NewClient(server.URL, "user", "wrong", 100)
	c.baseURL = server.URL

	_, err := c.ListPages(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestPublishSendsContent(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(`{"id":7}`))
	}))
	t.Cleanup(server.Close)

	c := NewClient(server.URL, "user", "pass", 100)
	c.baseURL = server.URL

	require.NoError(t, c.Publish(context.Background(), 7, "<p>final</p>"))
	assert.Equal(t, "<p>final</p>", received["content"])
}
