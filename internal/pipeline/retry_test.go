package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dgallion1/critree/internal/store"
)

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(fmt.Errorf("save: %w", &store.RetryableError{Op: "commit", Err: errors.New("deadlock")})) {
		t.Error("expected wrapped RetryableError to be retryable")
	}
	if IsRetryable(errors.New("constraint violation")) {
		t.Error("expected plain error to be permanent")
	}
}

func TestBackoff_GrowsAndCaps(t *testing.T) {
	for attempt := 0; attempt < 4; attempt++ {
		base := 100 * time.Millisecond << uint(attempt)
		d := Backoff(100*time.Millisecond, attempt)
		if d < base || d > base+base/2 {
			t.Errorf("attempt %d: expected %s..%s, got %s", attempt, base, base+base/2, d)
		}
	}
	if d := Backoff(time.Second, 40); d > maxBackoff+maxBackoff/2 {
		t.Errorf("expected capped backoff, got %s", d)
	}
}

func TestWithRetry(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	transient := &store.RetryableError{Op: "commit", Err: errors.New("serialization failure")}

	tests := []struct {
		name      string
		failures  int
		err       error
		attempts  int
		wantCalls int
		wantErr   bool
	}{
		{"succeeds after transient failures", 2, transient, 3, 3, false},
		{"gives up after attempts", 5, transient, 3, 3, true},
		{"permanent error is not retried", 5, errors.New("bad row"), 3, 1, true},
		{"zero attempts still runs once", 0, nil, 0, 1, false},
	}
	for _, tt := range tests {
		calls := 0
		err := withRetry(context.Background(), log, "save", tt.attempts, time.Millisecond, func() error {
			calls++
			if calls <= tt.failures {
				return tt.err
			}
			return nil
		})
		if calls != tt.wantCalls {
			t.Errorf("%s: expected %d calls, got %d", tt.name, tt.wantCalls, calls)
		}
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: expected error=%v, got %v", tt.name, tt.wantErr, err)
		}
	}
}
