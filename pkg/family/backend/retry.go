package backend

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/kintree/pkg/family"
)

// connectAttempts and connectDelay bound how long Open waits for a remote
// backend that is still starting up. The delay doubles after each attempt.
var (
	connectAttempts = 3
	connectDelay    = time.Second
)

// retryableError marks a failure worth another attempt.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// retryable wraps err so withRetry tries again.
func retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// withRetry calls fn until it succeeds, returns an error not wrapped with
// retryable, or runs out of attempts. The last error is returned unwrapped.
func withRetry(ctx context.Context, fn func() error) error {
	delay := connectDelay
	var lastErr error

	for i := 0; i < connectAttempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) {
			return err
		}

		if i < connectAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	var re *retryableError
	if errors.As(lastErr, &re) {
		return re.err
	}
	return lastErr
}

// connect retries a remote backend constructor while it reports
// connection failures.
func connect[B family.Backend](ctx context.Context, open func(context.Context) (B, error)) (B, error) {
	var b B
	err := withRetry(ctx, func() error {
		var err error
		b, err = open(ctx)
		if err != nil && ctx.Err() == nil {
			return retryable(err)
		}
		return err
	})
	return b, err
}
