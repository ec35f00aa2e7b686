package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// countingProvider fails a fixed number of times before succeeding.
type countingProvider struct {
	failures int
	err      error
	calls    int
}

func (p *countingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	p.calls++
	if p.calls <= p.failures {
		return nil, p.err
	}
	return &Response{Content: json.RawMessage(`"ok"`), StopReason: "end"}, nil
}

func (p *countingProvider) ModelID() string { return "counting" }

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetryRecoversFromTransientError(t *testing.T) {
	inner := &countingProvider{
		failures: 2,
		err:      &ErrProviderUnavailable{Err: errors.New("connection reset")},
	}
	p := WithRetry(inner, fastRetryConfig())

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Generate() error = %v, want nil", err)
	}
	if got := resp.Text(); got != "ok" {
		t.Errorf("Text() = %q, want %q", got, "ok")
	}
	if inner.calls != 3 {
		t.Errorf("inner calls = %d, want 3", inner.calls)
	}
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	inner := &countingProvider{
		failures: 10,
		err:      &ErrProviderUnavailable{Err: errors.New("still down")},
	}
	p := WithRetry(inner, fastRetryConfig())

	_, err := p.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("Generate() error = nil, want failure")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Errorf("error = %v, want *ErrProviderUnavailable", err)
	}
	if inner.calls != 3 {
		t.Errorf("inner calls = %d, want 3", inner.calls)
	}
}

func TestRetryInvalidResponseOnlyOnce(t *testing.T) {
	inner := &countingProvider{
		failures: 10,
		err:      &ErrInvalidResponse{Err: errors.New("bad json")},
	}
	p := WithRetry(inner, fastRetryConfig())

	_, err := p.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("Generate() error = nil, want failure")
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2 (one retry for invalid response)", inner.calls)
	}
}

func TestRetryDoesNotRetryMaxTokens(t *testing.T) {
	inner := &countingProvider{
		failures: 10,
		err:      &ErrMaxTokensExceeded{},
	}
	p := WithRetry(inner, fastRetryConfig())

	_, err := p.Generate(context.Background(), Request{})
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("error = %v, want *ErrMaxTokensExceeded", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
}

func TestRetryStopsOnCanceledContext(t *testing.T) {
	inner := &countingProvider{
		failures: 10,
		err:      &ErrProviderUnavailable{Err: errors.New("down")},
	}
	p := WithRetry(inner, RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Hour,
		MaxWait:     time.Hour,
		Multiplier:  2.0,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := p.Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
}

func TestBackoffHonorsRetryAfter(t *testing.T) {
	r := &retryProvider{config: fastRetryConfig()}

	err := &ErrRateLimit{RetryAfter: 42 * time.Millisecond}
	if got := r.backoff(0, err); got != 42*time.Millisecond {
		t.Errorf("backoff() = %v, want 42ms", got)
	}
}

func TestBackoffCapsAtMaxWait(t *testing.T) {
	r := &retryProvider{config: RetryConfig{
		MaxAttempts: 5,
		InitialWait: time.Second,
		MaxWait:     2 * time.Second,
		Multiplier:  10.0,
	}}

	got := r.backoff(4, errors.New("transient"))
	// Cap is 2s; jitter adds at most ±20%.
	if got > 2400*time.Millisecond {
		t.Errorf("backoff() = %v, want <= 2.4s", got)
	}
}
