package retry

import (
	"context"
	"fmt"
	"time"
)

// Classifier reports how an error should be treated between attempts.
// Permanent errors stop the loop; Multiplier scales the next delay.
type Classifier interface {
	Permanent(err error) bool
	Multiplier(err error) float64
}

// sleep is swapped in tests.
var sleep = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do runs fn until it succeeds, returns a permanent error, or the policy's
// retries are exhausted. onRetry, when set, is called before each retry with
// the 1-based retry number.
func Do(ctx context.Context, p Policy, c Classifier, onRetry func(attempt int, err error), fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 && onRetry != nil {
			onRetry(attempt, lastErr)
		}
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if c != nil && c.Permanent(err) {
			return err
		}
		if attempt == p.MaxRetries {
			break
		}
		delay := p.Delay(attempt + 1)
		if c != nil {
			if m := c.Multiplier(err); m > 0 {
				delay = time.Duration(float64(delay) * m)
			}
		}
		if err := sleep(ctx, delay); err != nil {
			return fmt.Errorf("retry interrupted: %w", lastErr)
		}
	}
	if p.MaxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("failed after %d retries: %w", p.MaxRetries, lastErr)
}
