package backend

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errDown = errors.New("connection refused")

func fastRetry(t *testing.T) {
	t.Helper()
	attempts, delay := connectAttempts, connectDelay
	connectAttempts, connectDelay = 3, time.Millisecond
	t.Cleanup(func() { connectAttempts, connectDelay = attempts, delay })
}

func TestWithRetry(t *testing.T) {
	fastRetry(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		failures  int
		retryable bool
		wantCalls int
		wantErr   bool
	}{
		{"success first try", 0, true, 1, false},
		{"success after retry", 1, true, 2, false},
		{"gives up", 5, true, 3, true},
		{"not retryable", 5, false, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := withRetry(ctx, func() error {
				calls++
				if calls <= tt.failures {
					if tt.retryable {
						return retryable(errDown)
					}
					return errDown
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("withRetry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && isRetryable(err) {
				t.Error("withRetry() should return the unwrapped error")
			}
		})
	}
}

func TestWithRetry_ContextCancel(t *testing.T) {
	fastRetry(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := withRetry(ctx, func() error { return retryable(errDown) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("withRetry() error = %v, want context.Canceled", err)
	}
}

func TestRetryable_Nil(t *testing.T) {
	if retryable(nil) != nil {
		t.Error("retryable(nil) should return nil")
	}
}

func TestConnect(t *testing.T) {
	fastRetry(t)
	calls := 0
	b, err := connect(context.Background(), func(context.Context) (*FileBackend, error) {
		calls++
		if calls < 2 {
			return nil, errDown
		}
		return NewFileBackend("x.json"), nil
	})
	if err != nil {
		t.Fatalf("connect() error = %v", err)
	}
	if b == nil || calls != 2 {
		t.Errorf("connect() = %v after %d calls, want backend after 2", b, calls)
	}
}
