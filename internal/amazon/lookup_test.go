package amazon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Papalexios/amz-neuralmesh/internal/cache"
)

func TestSimulatorDeterministic(t *testing.T) {
	s := NewSimulator()
	ctx := context.Background()

	a, err := s.Lookup(ctx, "Ninja Foodi Air Fryer")
	require.NoError(t, err)
	require.NotNil(t, a)

	b, err := s.Lookup(ctx, "Ninja Foodi Air Fryer")
	require.NoError(t, err)
	assert.Equal(t, a, b, "same query must yield the same product")

	c, err := s.Lookup(ctx, "Philips Airfryer XXL")
	require.NoError(t, err)
	assert.NotEqual(t, a.ASIN, c.ASIN)

	assert.GreaterOrEqual(t, a.Rating, 3.5)
	assert.LessOrEqual(t, a.Rating, 5.0)
}

func TestSimulatorEmptyQuery(t *testing.T) {
	s := NewSimulator()
	p, err := s.Lookup(context.Background(), "  ")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestClientLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "widget", r.URL.Query().Get("q"))
		assert.Equal(t, "key", r.Header.Get("X-API-KEY"))
		w.Write([]byte(`{"title":"Widget","price":"$10.00","url":"https://www.amazon.com/dp/B000TEST00","asin":"B000TEST00"}`))
	}))
	t.Cleanup(server.Close)

	c := NewClient(server.URL, "key")
	p, err := c.Lookup(context.Background(), "widget")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "B000TEST00", p.ASIN)
}

func TestClientLookupNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	c := NewClient(server.URL, "")
	p, err := c.Lookup(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Nil(t, p)
}

type countingLookup struct {
	calls atomic.Int32
	inner Lookup
}

func (c *countingLookup) Lookup(ctx context.Context, q string) (*Product, error) {
	c.calls.Add(1)
	return c.inner.Lookup(ctx, q)
}

func TestCachedLookup(t *testing.T) {
	counted := &countingLookup{inner: NewSimulator()}
	cached := NewCached(counted, cache.NewMemory(), time.Minute)
	ctx := context.Background()

	first, err := cached.Lookup(ctx, "widget")
	require.NoError(t, err)

	second, err := cached.Lookup(ctx, "widget")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), counted.calls.Load(), "second lookup must come from cache")
}

func TestSearchURL(t *testing.T) {
	got := SearchURL("air fryer", "mytag-20")
	assert.Contains(t, got, "k=air+fryer")
	assert.Contains(t, got, "tag=mytag-20")
}
