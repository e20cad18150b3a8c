package collect

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/fwojciec/youte"
)

// DefaultRetryDelays returns the backoff delays for transient failures: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// DefaultJitter is the fraction of each delay randomized in either direction.
const DefaultJitter = 0.2

// retryTransient calls fn until it succeeds, fails with a non-ETRANSIENT
// error, or the delays are exhausted. It makes len(delays)+1 attempts; a
// failure that outlives them is returned as EFATAL for the same cursor.
func retryTransient(ctx context.Context, clock youte.Clock, delays []time.Duration, jitterFraction float64, fn func(ctx context.Context) error, onRetry func(attempt int, err error)) error {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if youte.ErrorCode(err) != youte.ETRANSIENT {
			return err
		}
		if attempt >= maxAttempts-1 {
			break
		}
		if onRetry != nil {
			onRetry(attempt+2, err)
		}
		if err := clock.Sleep(ctx, jitter(delays[attempt], jitterFraction)); err != nil {
			return err
		}
	}
	return escalate(lastErr, maxAttempts)
}

// escalate reports a transient failure that outlived its retries as fatal,
// keeping the cursor and provider reason of the last attempt.
func escalate(err error, attempts int) error {
	fatal := youte.WrapError(youte.EFATAL, err, "%s (gave up after %d attempts)", youte.ErrorMessage(err), attempts)
	var yerr *youte.Error
	if errors.As(err, &yerr) {
		fatal.Reason = yerr.Reason
		fatal.Cursor = yerr.Cursor
	}
	return fatal
}

// jitter returns d shifted by a random amount in [-fraction*d, +fraction*d].
func jitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 || d <= 0 {
		return d
	}
	spread := float64(d) * fraction
	return d + time.Duration((rand.Float64()*2-1)*spread)
}
