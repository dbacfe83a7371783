package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// RetryPolicy retries transient generation failures with exponential backoff.
// Content-safety rejections are never retried.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryPolicy matches the upstream providers' transient failure
// profile: 3 attempts, 2s initial backoff doubling up to 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     10 * time.Second,
	}
}

// Retryable reports whether a failed call may be attempted again.
func (p RetryPolicy) Retryable(err error) bool {
	return !IsContentBlocked(err)
}

// Do runs fn up to MaxAttempts times, sleeping between attempts. Rate-limit
// errors extend the sleep to the provider's requested window.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := p.InitialBackoff

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		wait := backoff
		var rle *RateLimitError
		if errors.As(lastErr, &rle) && rle.RetryAfter > wait {
			wait = rle.RetryAfter
		}
		log.Printf("llm.RetryPolicy: %s attempt %d/%d failed, retrying in %s: %v",
			op, attempt, attempts, wait, lastErr)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		backoff *= 2
		if p.MaxBackoff > 0 && backoff > p.MaxBackoff {
			backoff = p.MaxBackoff
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, attempts, lastErr)
}
