// Package llm provides the provider-agnostic text generation capability
// used by both pipeline phases. Providers are tagged variants behind one
// interface; orchestration code never branches on the provider.
package llm

import (
	"context"
	"sync"
	"time"
)

// GenerateConfig identifies the model and sampling parameters for one call.
type GenerateConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Provider generates text from a system+user prompt pair. The returned
// text is expected to contain embeddable JSON; parsing it is the caller's
// problem.
type Provider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, cfg GenerateConfig) (string, error)
}

// RateLimiter implements a token bucket for rate limiting API calls.
type RateLimiter struct {
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimiter creates a new rate limiter with the specified parameters.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow tries to take a token from the bucket, refilling if necessary.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(r.lastRefill)
	tokensToAdd := int(elapsed / r.refillRate)

	if tokensToAdd > 0 {
		r.tokens = min(r.maxTokens, r.tokens+tokensToAdd)
		r.lastRefill = now
	}

	if r.tokens > 0 {
		r.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for !r.Allow() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return nil
}
