package providers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	// DefaultRetryAttempts is the number of additional attempts after the
	// first failure.
	DefaultRetryAttempts = 2

	// DefaultRetryDelay is the base backoff; attempt n waits n times this.
	DefaultRetryDelay = 1500 * time.Millisecond
)

// RetryConfig controls the resilient call wrapper.
type RetryConfig struct {
	// Attempts is the number of retries after the initial call.
	Attempts uint
	// Delay is the base backoff unit for linear backoff.
	Delay time.Duration
}

// DefaultRetryConfig returns the standard retry policy for generation calls.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Attempts: DefaultRetryAttempts, Delay: DefaultRetryDelay}
}

// CallWithRetry invokes fn, retrying on transient upstream failures
// (rate-limit and overload class) with linear backoff: 1×delay before the
// first retry, 2×delay before the second, and so on. Non-transient errors
// propagate immediately. The last error is returned unchanged.
func CallWithRetry(ctx context.Context, cfg RetryConfig, fn func() (*GenerateResult, error)) (*GenerateResult, error) {
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultRetryDelay
	}
	return retry.DoWithData(
		fn,
		retry.Context(ctx),
		retry.Attempts(cfg.Attempts+1),
		retry.RetryIf(IsTransient),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return BackoffDelay(cfg.Delay, n)
		}),
		retry.LastErrorOnly(true),
	)
}

// BackoffDelay returns the wait before retry n (0-based): base × (n+1).
func BackoffDelay(base time.Duration, n uint) time.Duration {
	return base * time.Duration(n+1)
}

// transientStatusMarkers are HTTP-like status codes conventionally embedded
// in upstream error text when the service is rate-limited or overloaded.
var transientStatusMarkers = []string{"429", "503", "504"}

// IsTransient reports whether err looks like a rate-limit or overload
// condition that is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case 429, 503, 504:
			return true
		}
		return false
	}

	msg := err.Error()
	for _, marker := range transientStatusMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
