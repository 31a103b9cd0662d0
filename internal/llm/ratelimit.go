package llm

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/docfold/pdf-digest/internal/logger"
)

const (
	// Sustained token budget kept below the service's published limit to
	// leave safety margin.
	tokensPerSecond = 30000
	// Burst allows short bursts above the sustained rate
	burstTokens = 60000

	// Worker pool size for parallel chunk summarization. The dominant cost
	// is network latency, so a handful of in-flight calls is plenty.
	defaultMaxWorkers = 4

	// Retry attempt ceiling for transient failures.
	maxRetries = 5
)

// Backoff delays are variables so tests can shrink them.
var (
	baseRetryDelay = 1 * time.Second
	maxRetryDelay  = 32 * time.Second
)

var (
	// Global rate limiter for summarization API calls.
	// This ensures all concurrent operations share the same rate limit.
	apiRateLimiter = rate.NewLimiter(rate.Limit(tokensPerSecond), burstTokens)
)

// estimateTokens approximates a request's token count from its character
// count. Four characters per token is a conservative rule of thumb. The
// estimate is capped at burstTokens; WaitN rejects requests above the
// limiter's burst outright, and an oversized prompt should surface as a
// service-side error, not a limiter error.
func estimateTokens(text string) int {
	n := len(text) / 4
	if n < 1 {
		n = 1
	}
	if n > burstTokens {
		n = burstTokens
	}
	return n
}

// RateLimitedCall wraps an API call with rate limiting and retry logic.
// It waits for rate limiter approval before making the call, and retries
// transient failures (rate limit, server error) with exponential backoff.
// Auth and client errors are returned immediately.
func RateLimitedCall[T any](ctx context.Context, estimatedTokens int, log logger.Logger, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if estimatedTokens > burstTokens {
		estimatedTokens = burstTokens
	}

	// Wait for rate limiter approval
	err := apiRateLimiter.WaitN(ctx, estimatedTokens)
	if err != nil {
		return zero, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(baseRetryDelay) * math.Pow(2, float64(attempt-1)))
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}

			log.Info("Retry attempt %d/%d after %v delay", attempt, maxRetries, delay)

			select {
			case <-time.After(delay):
				// Continue to retry
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				log.Info("Retry succeeded on attempt %d", attempt)
			}
			return result, nil
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		lastErr = err

		kind := ClassifyError(err)
		if !kind.Retryable() {
			return zero, err
		}

		log.Warn("Transient %s error on attempt %d/%d: %v", kind, attempt+1, maxRetries+1, err)
	}

	// All retries exhausted
	return zero, fmt.Errorf("max retries (%d) exceeded, last error: %w", maxRetries, lastErr)
}

// WorkerPool bounds the number of in-flight summarization calls.
type WorkerPool struct {
	maxWorkers int
	semaphore  chan struct{}
}

// NewWorkerPool creates a new worker pool with the specified maximum workers
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}
	return &WorkerPool{
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
	}
}

// Acquire acquires a worker slot, blocking if all workers are busy
func (wp *WorkerPool) Acquire(ctx context.Context) error {
	select {
	case wp.semaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release releases a worker slot, allowing another worker to proceed
func (wp *WorkerPool) Release() {
	<-wp.semaphore
}
