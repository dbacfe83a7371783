package llm

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// RateLimitError indicates the provider throttled the request. Callers should
// back off at least RetryAfter before retrying this provider.
type RateLimitError struct {
	Provider   string
	Err        error
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError wraps err as a rate-limit error. A zero retryAfter
// defaults to 60 seconds.
func NewRateLimitError(provider string, err error, retryAfter time.Duration) *RateLimitError {
	if retryAfter <= 0 {
		retryAfter = 60 * time.Second
	}
	return &RateLimitError{Provider: provider, Err: err, RetryAfter: retryAfter}
}

// IsRateLimit reports whether err is a rate-limit error.
func IsRateLimit(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}

// ParseRetryAfterHeader parses a Retry-After header value in seconds.
// Returns 0 when absent or unparseable.
func ParseRetryAfterHeader(value string) time.Duration {
	if value == "" {
		return 0
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// ContentBlockedError indicates the provider refused to generate output for
// safety reasons. Never retried: the same input will be blocked again.
type ContentBlockedError struct {
	Provider string
	Reason   string
}

func (e *ContentBlockedError) Error() string {
	return fmt.Sprintf("%s blocked generation: %s", e.Provider, e.Reason)
}

// IsContentBlocked reports whether err is a content-safety rejection.
func IsContentBlocked(err error) bool {
	var cbe *ContentBlockedError
	return errors.As(err, &cbe)
}
