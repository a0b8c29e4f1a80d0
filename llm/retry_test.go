package llm

import (
	"context"
	"testing"
	"time"
)

func fastPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:        maxRetries,
		BaseDelay:         0.001,
		MaxDelay:          0.01,
		BackoffMultiplier: 1.0,
	}
}

func TestRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), fastPolicy(3), func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" || calls != 1 {
		t.Errorf("result=%q calls=%d", result, calls)
	}
}

func TestRetryRecoversAfterTransient(t *testing.T) {
	calls := 0
	transient := &ServerError{ProviderError: ProviderError{
		ClientError: ClientError{Message: "500"}, Retryable: true,
	}}
	result, err := Retry(context.Background(), fastPolicy(3), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", transient
		}
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "recovered" || calls != 3 {
		t.Errorf("result=%q calls=%d", result, calls)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	calls := 0
	fatal := &AuthenticationError{ProviderError: ProviderError{
		ClientError: ClientError{Message: "401"},
	}}
	_, err := Retry(context.Background(), fastPolicy(3), func(ctx context.Context) (string, error) {
		calls++
		return "", fatal
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("non-retryable error retried %d times", calls-1)
	}
}

func TestRetryHonorsRetryAfterCap(t *testing.T) {
	after := 120.0 // exceeds MaxDelay
	rl := &RateLimitError{ProviderError: ProviderError{
		ClientError: ClientError{Message: "429"},
		Retryable:   true,
		RetryAfter:  &after,
	}}
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(3), func(ctx context.Context) (string, error) {
		calls++
		return "", rl
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("should give up immediately when Retry-After exceeds MaxDelay, got %d calls", calls)
	}
}

func TestRetryContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transient := &ServerError{ProviderError: ProviderError{
		ClientError: ClientError{Message: "500"}, Retryable: true,
	}}
	policy := RetryPolicy{MaxRetries: 2, BaseDelay: 1.0, MaxDelay: 5.0, BackoffMultiplier: 2.0}
	start := time.Now()
	_, err := Retry(ctx, policy, func(ctx context.Context) (string, error) {
		return "", transient
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*AbortError); !ok {
		t.Errorf("expected AbortError, got %T", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("cancelled context should short-circuit the backoff wait")
	}
}

func TestDelayBackoff(t *testing.T) {
	p := RetryPolicy{BaseDelay: 1.0, MaxDelay: 4.0, BackoffMultiplier: 2.0}
	if d := p.Delay(0); d != time.Second {
		t.Errorf("attempt 0 delay = %v", d)
	}
	if d := p.Delay(1); d != 2*time.Second {
		t.Errorf("attempt 1 delay = %v", d)
	}
	// Capped at MaxDelay.
	if d := p.Delay(10); d != 4*time.Second {
		t.Errorf("attempt 10 delay = %v, want cap", d)
	}
}
