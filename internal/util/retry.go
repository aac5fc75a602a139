package util

import (
	"context"
	"errors"
	"time"
)

// Backoff describes how often an operation is attempted and how long to wait
// between attempts. The delay doubles after every failure up to Max.
type Backoff struct {
	Attempts int
	Delay    time.Duration
	Max      time.Duration
}

// DefaultBackoff is used for calls to external services (database, broker, S3).
var DefaultBackoff = Backoff{Attempts: 3, Delay: 200 * time.Millisecond, Max: 2 * time.Second}

func (b Backoff) attempts() int {
	if b.Attempts <= 0 {
		return 1
	}
	return b.Attempts
}

func (b Backoff) next(d time.Duration) time.Duration {
	d *= 2
	if b.Max > 0 && d > b.Max {
		return b.Max
	}
	return d
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// RetryWithContext calls fn until it returns a nil error, the attempts are used
// up or ctx is done. Context errors returned by fn are not retried.
// Returns ctx.Err() if the context is canceled, otherwise the last error.
func RetryWithContext[T any](ctx context.Context, b Backoff, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	delay := b.Delay

	for i := 0; i < b.attempts(); i++ {
		if i > 0 && delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
			delay = b.next(delay)
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if isContextErr(err) {
			return zero, err
		}
		lastErr = err
	}
	return zero, lastErr
}

// RetryErrWithContext is RetryWithContext for functions without a result.
func RetryErrWithContext(ctx context.Context, b Backoff, fn func(context.Context) error) error {
	_, err := RetryWithContext(ctx, b, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
