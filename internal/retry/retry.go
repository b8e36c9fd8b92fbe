// Package retry is the single connect-with-bounded-retry helper shared by
// every service. Backoff is linear (delay step times the attempt number),
// with no jitter and no cap beyond the attempt count.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Do calls fn up to attempts times, sleeping step*n after the nth failure.
// It returns nil as soon as fn succeeds, ctx.Err() if the context ends while
// waiting, and the last error wrapped with the attempt count otherwise.
func Do(ctx context.Context, attempts int, step time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for n := 1; n <= attempts; n++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if n == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(step * time.Duration(n)):
		}
	}

	return fmt.Errorf("after %d attempts: %w", attempts, err)
}
