package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/dgallion1/critree/internal/store"
)

const maxBackoff = 30 * time.Second

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *store.RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns the delay before retry n (0-indexed): base doubled per
// attempt, capped, plus up to 50% jitter.
func Backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	d := base << uint(attempt)
	if d <= 0 || d > maxBackoff {
		d = maxBackoff
	}
	jitter := time.Duration(rand.Int64N(int64(d)/2 + 1))
	return d + jitter
}

// withRetry runs fn until it succeeds, returns a permanent error, or runs
// out of attempts. Only *store.RetryableError is retried.
func withRetry(ctx context.Context, log *slog.Logger, op string, attempts int, base time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	return retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.LastErrorOnly(true),
		retry.RetryIf(IsRetryable),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return Backoff(base, int(n))
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("retryable store error", "op", op, "attempt", n, "error", err)
		}),
	)
}
