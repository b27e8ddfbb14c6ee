package engine

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy bounds the retry behavior for generation requests. The policy
// is deliberately narrow: only the transient-overload marker is retried,
// everything else fails fast.
type RetryPolicy struct {
	MaxAttempts int           // total attempts including the first
	BaseDelay   time.Duration // delay before the first retry, doubled each attempt
}

// DefaultRetryPolicy matches the backend contract: three attempts with a
// one second initial backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}
}

// RetryableFunc is one attempt of the wrapped operation.
type RetryableFunc[T any] func(ctx context.Context) (T, error)

// RetryWithPolicy executes fn up to policy.MaxAttempts times, sleeping
// BaseDelay * 2^(attempt-1) between attempts. Only errors for which
// IsTransient holds are retried; any other failure propagates immediately.
// Exhausting the attempts returns a RetriesExhaustedError wrapping the last
// failure. onRetry, if non-nil, observes each scheduled retry.
func RetryWithPolicy[T any](
	ctx context.Context,
	policy RetryPolicy,
	fn RetryableFunc[T],
	onRetry func(attempt int, delay time.Duration, err error),
) (T, error) {
	var zero T

	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !IsTransient(err) {
			return zero, err
		}
		lastErr = err

		if attempt == policy.MaxAttempts {
			break
		}

		delay := policy.BaseDelay << (attempt - 1)
		if onRetry != nil {
			onRetry(attempt, delay, err)
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return zero, &RetriesExhaustedError{Err: lastErr, Attempts: policy.MaxAttempts}
}
