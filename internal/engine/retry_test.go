package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func transientErr() error {
	return NewGatewayError(KindTransient, nil, "model overloaded")
}

func TestRetryWithPolicy_SucceedsAfterTransientFailures(t *testing.T) {
	ctx := context.Background()
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}

	calls := 0
	var delays []time.Duration
	result, err := RetryWithPolicy(ctx, policy, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", transientErr()
		}
		return "ok", nil
	}, func(attempt int, delay time.Duration, err error) {
		delays = append(delays, delay)
	})

	if err != nil {
		t.Fatalf("RetryWithPolicy() error = %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %q, want %q", result, "ok")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}

	// Exponential backoff: base, then 2x base.
	want := []time.Duration{time.Millisecond, 2 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("got %d retry delays, want %d", len(delays), len(want))
	}
	for i, d := range delays {
		if d != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, d, want[i])
		}
	}
}

func TestRetryWithPolicy_ExhaustsAttempts(t *testing.T) {
	ctx := context.Background()
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}

	calls := 0
	_, err := RetryWithPolicy(ctx, policy, func(ctx context.Context) (string, error) {
		calls++
		return "", transientErr()
	}, nil)

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if !IsRetriesExhausted(err) {
		t.Fatalf("expected retries-exhausted error, got %v", err)
	}

	// The last transient error stays reachable through the wrapper.
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) || gwErr.Kind != KindTransient {
		t.Errorf("expected wrapped transient GatewayError, got %v", err)
	}
}

func TestRetryWithPolicy_NonTransientFailsImmediately(t *testing.T) {
	ctx := context.Background()
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}

	calls := 0
	_, err := RetryWithPolicy(ctx, policy, func(ctx context.Context) (string, error) {
		calls++
		return "", NewGatewayError(KindQuota, nil, "quota exceeded")
	}, nil)

	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry for non-transient errors)", calls)
	}
	if IsRetriesExhausted(err) {
		t.Errorf("non-transient failure must not be reported as exhausted retries")
	}
	if !IsKind(err, KindQuota) {
		t.Errorf("expected quota error, got %v", err)
	}
}

func TestRetryWithPolicy_ContextCancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Hour}

	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := RetryWithPolicy(ctx, policy, func(ctx context.Context) (string, error) {
		calls++
		return "", transientErr()
	}, nil)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
