package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"assembly-rag-be/pkg/rag"

	"github.com/sony/gobreaker"
)

// RetryConfig bounds the retry loop around generation calls.
type RetryConfig struct {
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	JitterEnabled bool
}

// DefaultRetryConfig returns the retry envelope used when config is silent.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		BaseDelay:     time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
		JitterEnabled: true,
	}
}

// Client wraps an LLMProvider with a per-attempt timeout, bounded retries
// with exponential backoff, and a circuit breaker. Once the retry budget is
// spent (or the breaker is open) it fails with rag.ErrModelUnavailable.
type Client struct {
	provider LLMProvider
	retry    RetryConfig
	timeout  time.Duration
	breaker  *gobreaker.CircuitBreaker
	logger   *log.Logger
}

func NewClient(provider LLMProvider, timeout time.Duration, retry RetryConfig, logger *log.Logger) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if retry.BackoffFactor <= 1 {
		retry.BackoffFactor = 2.0
	}
	if retry.BaseDelay <= 0 {
		retry.BaseDelay = time.Second
	}
	if retry.MaxDelay < retry.BaseDelay {
		retry.MaxDelay = 30 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		provider: provider,
		retry:    retry,
		timeout:  timeout,
		breaker:  breaker,
		logger:   logger,
	}
}

// Complete sends a single prompt through the retry envelope and returns the
// raw model text.
func (c *Client) Complete(ctx context.Context, prompt string, options ...Option) (string, error) {
	var lastErr error

	delay := c.retry.BaseDelay

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
				// Exponential backoff with jitter.
				delay = time.Duration(float64(delay) * c.retry.BackoffFactor)
				if c.retry.JitterEnabled {
					jitter := time.Duration(float64(delay) * 0.25 * (2.0*float64(time.Now().UnixNano()%1000)/1000.0 - 1.0))
					delay += jitter
				}
				if delay > c.retry.MaxDelay {
					delay = c.retry.MaxDelay
				}
			}
		}

		result, err := c.breaker.Execute(func() (interface{}, error) {
			attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			return c.provider.Generate(attemptCtx, prompt, options...)
		})
		if err == nil {
			return result.(string), nil
		}
		lastErr = err

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Printf("[WARN] llm circuit breaker open, failing fast")
			break
		}
		if ctx.Err() != nil {
			// Parent cancelled or timed out; retrying would only burn budget.
			return "", ctx.Err()
		}

		c.logger.Printf("[WARN] llm attempt %d/%d failed: %v", attempt+1, c.retry.MaxRetries+1, err)
	}

	return "", fmt.Errorf("generation failed after %d attempts (last: %v): %w",
		c.retry.MaxRetries+1, lastErr, rag.ErrModelUnavailable)
}
