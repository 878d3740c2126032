package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastLimiter() *RateLimiter {
	return NewRateLimiter(100, time.Millisecond)
}

func TestOpenAICompatibleGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`))
	}))
	t.Cleanup(server.Close)

	p := NewOpenAICompatible(server.URL, "test-key")
	p.rateLimiter = fastLimiter()

	got, err := p.Generate(context.Background(), "system", "user", GenerateConfig{Model: "test-model", Temperature: 0.3})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, got)
}

func TestOpenAICompatibleRetriesOn500(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"recovered"}}]}`))
	}))
	t.Cleanup(server.Close)

	p := NewOpenAICompatible(server.URL, "")
	p.rateLimiter = fastLimiter()

	got, err := p.Generate(context.Background(), "s", "u", GenerateConfig{})
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOpenAICompatibleDoesNotRetryOn400(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad request"}`))
	}))
	t.Cleanup(server.Close)

	p := NewOpenAICompatible(server.URL, "")
	p.rateLimiter = fastLimiter()

	_, err := p.Generate(context.Background(), "s", "u", GenerateConfig{})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "repeated 400s are non-recoverable, not retried")
}

func TestGeminiGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-test:generateContent")
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hello"}]}}]}`))
	}))
	t.Cleanup(server.Close)

	p := NewGemini("k", server.URL)
	p.rateLimiter = fastLimiter()

	got, err := p.Generate(context.Background(), "s", "u", GenerateConfig{Model: "gemini-test"})
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestRateLimiterRefills(t *testing.T) {
	r := NewRateLimiter(2, 10*time.Millisecond)

	assert.True(t, r.Allow())
	assert.True(t, r.Allow())
	assert.False(t, r.Allow(), "bucket exhausted")

	time.Sleep(25 * time.Millisecond)
	assert.True(t, r.Allow(), "bucket refilled after the refill interval")
}
