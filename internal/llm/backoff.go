package llm

import (
	"math/rand"
	"time"
)

// backoffDelay computes baseDelay * 2^attempt with jitter.
func backoffDelay(attempt int) time.Duration {
	delay := baseDelay * time.Duration(1<<uint(attempt))
	jitter := time.Duration(rand.Int63n(int64(delay) / 2))
	return delay + jitter
}
