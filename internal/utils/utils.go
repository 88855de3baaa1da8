package utils

import (
	"context"
	"time"
)

// after is swapped in tests.
var after = time.After

// WaitFor blocks for d or until ctx is done. A non-positive d returns
// immediately unless ctx is already done.
func WaitFor(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-after(d):
		return nil
	}
}

// LinearBackoff returns attempt*step, never less than zero.
func LinearBackoff(attempt int, step time.Duration) time.Duration {
	if attempt <= 0 || step <= 0 {
		return 0
	}
	return time.Duration(attempt) * step
}
