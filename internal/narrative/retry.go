// Package narrative consumes the external narrative-generation service:
// it turns a ranked shortlist into structured assessments, retrying
// transient failures with exponential backoff.
package narrative

import (
	"context"
	"strings"
	"time"
)

// RetryPolicy is an explicit, independently testable retry policy for the
// narrative service call.
type RetryPolicy struct {
	// MaxAttempts bounds the total number of attempts, including the first.
	MaxAttempts int
	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration
	// Multiplier grows the delay after every failed attempt.
	Multiplier float64
	// Retryable decides whether an error is a transient failure signal.
	Retryable func(error) bool
}

// DefaultRetryPolicy retries twice after the initial attempt, starting at
// 500ms and multiplying by 4 (500ms, 2s).
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Multiplier:  4,
		Retryable:   IsTransient,
	}
}

// transientMarkers are substrings of provider error messages that signal
// overload or rate limiting.
var transientMarkers = []string{
	"429",
	"503",
	"rate limit",
	"ratelimit",
	"overloaded",
	"unavailable",
	"resource exhausted",
	"quota",
}

// IsTransient reports whether err looks like a transient overload signal
// worth retrying. Any other failure is surfaced immediately.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Do runs fn, retrying per the policy. Non-retryable errors and the final
// attempt's error are returned as-is; context cancellation aborts waiting.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.BaseDelay
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}
	return err
}
