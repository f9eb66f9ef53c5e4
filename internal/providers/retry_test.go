package providers

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBackoffDelay(t *testing.T) {
	base := 1500 * time.Millisecond

	// First retry waits 1500ms, second waits 3000ms.
	if got := BackoffDelay(base, 0); got != 1500*time.Millisecond {
		t.Errorf("retry 1 delay = %v, want 1.5s", got)
	}
	if got := BackoffDelay(base, 1); got != 3000*time.Millisecond {
		t.Errorf("retry 2 delay = %v, want 3s", got)
	}
}

func TestCallWithRetry(t *testing.T) {
	// Delay shrunk so tests don't sleep for real.
	cfg := RetryConfig{Attempts: 2, Delay: time.Millisecond}

	t.Run("transient twice then success", func(t *testing.T) {
		calls := 0
		result, err := CallWithRetry(context.Background(), cfg, func() (*GenerateResult, error) {
			calls++
			if calls < 3 {
				return nil, &StatusError{Code: 429, Message: "rate limited"}
			}
			return &GenerateResult{Text: "ok"}, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Text != "ok" {
			t.Errorf("text = %q, want ok", result.Text)
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
	})

	t.Run("non-transient fails immediately", func(t *testing.T) {
		calls := 0
		wantErr := errors.New("invalid request")
		_, err := CallWithRetry(context.Background(), cfg, func() (*GenerateResult, error) {
			calls++
			return nil, wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Errorf("error = %v, want %v", err, wantErr)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("transient exhausts budget and propagates last error", func(t *testing.T) {
		calls := 0
		_, err := CallWithRetry(context.Background(), cfg, func() (*GenerateResult, error) {
			calls++
			return nil, &StatusError{Code: 503, Message: "overloaded"}
		})
		var se *StatusError
		if !errors.As(err, &se) || se.Code != 503 {
			t.Errorf("error = %v, want StatusError 503", err)
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
	})
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"status 429", &StatusError{Code: 429}, true},
		{"status 503", &StatusError{Code: 503}, true},
		{"status 504", &StatusError{Code: 504}, true},
		{"status 400", &StatusError{Code: 400}, false},
		{"status 500", &StatusError{Code: 500}, false},
		{"wrapped status", &StatusError{Code: 429, Message: "slow down"}, true},
		{"marker in text", errors.New("upstream error (status 429): quota"), true},
		{"plain error", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
