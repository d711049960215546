// Package retry provides a bounded retry policy with exponential backoff.
package retry

import (
	"context"
	"time"
)

// Policy caps how often and how long an operation is retried.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// NewPolicy returns a policy with the backoff delay capped at 30 seconds.
func NewPolicy(maxAttempts int, initialDelay time.Duration) *Policy {
	return &Policy{
		MaxAttempts:  maxAttempts,
		InitialDelay: initialDelay,
		MaxDelay:     30 * time.Second,
	}
}

// Execute runs fn until it succeeds, the attempt budget is spent, or the
// context is done. The delay doubles between attempts up to MaxDelay. The
// returned error is the last failure (or the context error).
func (p *Policy) Execute(ctx context.Context, fn func() error) (int, error) {
	var lastErr error
	delay := p.InitialDelay

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := fn(); err == nil {
			return attempt, nil
		} else {
			lastErr = err
		}
		if attempt == p.MaxAttempts {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return attempt, ctx.Err()
		}
		delay *= 2
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return p.MaxAttempts, lastErr
}
