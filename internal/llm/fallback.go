package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"claimcheck/internal/port"
)

// circuitState tracks rate-limit backoff for a single generator.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackGenerator tries generators in order, skipping those with open
// rate-limit circuits. It implements port.TextGenerator.
type FallbackGenerator struct {
	gens     []port.TextGenerator
	circuits []*circuitState
}

// NewFallbackGenerator creates a FallbackGenerator from an ordered list of generators.
func NewFallbackGenerator(gens []port.TextGenerator) *FallbackGenerator {
	circuits := make([]*circuitState, len(gens))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackGenerator{gens: gens, circuits: circuits}
}

func (f *FallbackGenerator) Name() string {
	return "fallback"
}

func (f *FallbackGenerator) Generate(ctx context.Context, input port.GenerateInput) (string, error) {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, g := range f.gens {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Printf("llm.FallbackGenerator: skipping %s (circuit open until %s)", g.Name(), resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := g.Generate(ctx, input)
		if err == nil {
			return out, nil
		}

		log.Printf("llm.FallbackGenerator: %s failed: %v", g.Name(), err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
			if IsContentBlocked(err) {
				return "", err
			}
		}
	}

	if lastErr == nil || allRateLimited {
		// Every generator was skipped or throttled.
		retryAfter := time.Until(earliestReset)
		if retryAfter < 0 {
			retryAfter = time.Second
		}
		return "", NewRateLimitError("all", fmt.Errorf("all generators rate limited"), retryAfter)
	}

	return "", fmt.Errorf("all generators failed: %w", lastErr)
}
