package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// message represents a single chat message in the request payload.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model,omitempty"`
	Messages    []message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatChoice struct {
	FinishReason string  `json:"finish_reason"`
	Index        int     `json:"index"`
	Message      message `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// OpenAICompatible speaks the chat-completions wire format, which also
// covers local llama-server style endpoints.
type OpenAICompatible struct {
	client      *http.Client
	endpoint    string
	apiKey      string
	rateLimiter *RateLimiter
}

// NewOpenAICompatible creates a provider for the given endpoint. An empty
// apiKey is allowed for local servers.
func NewOpenAICompatible(endpoint, apiKey string) *OpenAICompatible {
	return &OpenAICompatible{
		client:      &http.Client{Timeout: 360 * time.Second},
		endpoint:    endpoint,
		apiKey:      apiKey,
		rateLimiter: NewRateLimiter(5, 12*time.Second),
	}
}

// Generate sends the prompt pair and returns the first choice's content.
// Transient failures retry with exponential backoff and jitter; repeated
// client errors propagate after the attempts are exhausted.
func (p *OpenAICompatible) Generate(ctx context.Context, systemPrompt, userPrompt string, cfg GenerateConfig) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: cfg.Model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream:      false,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	respBody, err := doWithRetry(ctx, p.client, p.rateLimiter, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if p.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+p.apiKey)
		}
		return req, nil
	})
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("generation response contained no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// retry policy shared by all providers.
const (
	maxRetries = 5
	baseDelay  = time.Second
)

// doWithRetry runs an HTTP call with rate limiting, bounded retries, and
// exponential backoff with jitter. newReq is called per attempt because a
// consumed request body cannot be resent.
func doWithRetry(ctx context.Context, client *http.Client, limiter *RateLimiter, newReq func() (*http.Request, error)) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		if attempt > 0 {
			log.Debug("retrying generation request", "attempt", attempt, "max_retries", maxRetries)
		}

		req, err := newReq()
		if err != nil {
			return nil, fmt.Errorf("failed to prepare generation request: %w", err)
		}

		resp, reqErr := client.Do(req)
		if reqErr == nil {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()

			if readErr == nil && resp.StatusCode == http.StatusOK {
				return body, nil
			}

			if readErr != nil {
				lastErr = readErr
			} else {
				lastErr = fmt.Errorf("generation API returned status %d: %s", resp.StatusCode, truncate(string(body), 300))
				// 4xx other than 429 will not improve with retries.
				if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
					return nil, lastErr
				}
			}
			log.Error("generation request failed", "status", resp.StatusCode, "attempt", attempt)
		} else {
			lastErr = reqErr
			log.Error("failed to send generation request", "error", reqErr, "attempt", attempt)
		}

		if attempt == maxRetries {
			break
		}

		delay := backoffDelay(attempt)
		log.Debug("backing off before retry", "delay", delay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("generation failed after %d attempts: %w", maxRetries, lastErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
