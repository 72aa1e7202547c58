package retry

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   5 * time.Millisecond,
		MaxDelay:       50 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

func TestWithBackoff_Success(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestWithBackoff_SuccessAfterRetry(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		attempts++
		if attempts < 3 {
			return &HTTPError{StatusCode: 500, Message: "Server Error"}
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithBackoff_MaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		attempts++
		return syscall.ECONNREFUSED
	})

	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if !errors.Is(err, syscall.ECONNREFUSED) {
		t.Errorf("expected wrapped ECONNREFUSED, got %v", err)
	}
}

func TestWithBackoff_NonRetryableAbortsImmediately(t *testing.T) {
	attempts := 0
	wantErr := &HTTPError{StatusCode: 400, Message: "Bad Request"}
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		attempts++
		return wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("expected %v, got %v", wantErr, err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestWithBackoff_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithBackoff(ctx, fastConfig(), func() error {
		return &HTTPError{StatusCode: 503, Message: "unavailable"}
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "context canceled", err: context.Canceled, want: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: false},
		{name: "connection refused", err: syscall.ECONNREFUSED, want: true},
		{name: "connection reset", err: syscall.ECONNRESET, want: true},
		{name: "http 500", err: &HTTPError{StatusCode: 500}, want: true},
		{name: "http 429", err: &HTTPError{StatusCode: 429}, want: true},
		{name: "http 408", err: &HTTPError{StatusCode: 408}, want: true},
		{name: "http 404", err: &HTTPError{StatusCode: 404}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestAddJitter(t *testing.T) {
	base := 100 * time.Millisecond

	for i := 0; i < 20; i++ {
		got := addJitter(base, 0.5)
		if got < base || got > base+base/2 {
			t.Fatalf("jitter out of range: %v", got)
		}
	}

	if got := addJitter(base, 0); got != base {
		t.Errorf("zero jitter must not change delay, got %v", got)
	}
}
