package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/neuromagic888-cloud/secretsync/internal/domain/model"
)

const (
	defaultMaxAttempts    = 4
	defaultRetryBaseDelay = 1 * time.Second
)

// retryTransient runs op up to maxAttempts times, sleeping between attempts
// with exponential backoff. Only transient errors are retried; anything else
// escalates immediately. A server-provided retry-after hint overrides the
// computed delay when it is longer.
func retryTransient(ctx context.Context, maxAttempts int, baseDelay time.Duration, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = baseDelay
	bo.MaxInterval = 30 * baseDelay
	bo.MaxElapsedTime = 0 // attempts are capped by count, not wall time
	bo.Reset()

	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		if !errors.Is(err, model.ErrTransient) || attempt >= maxAttempts {
			return err
		}

		delay := bo.NextBackOff()
		var transient *model.TransientError
		if errors.As(err, &transient) && transient.RetryAfter > delay {
			delay = transient.RetryAfter
		}

		slog.Warn("transient api error, backing off",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"delay", delay.Round(time.Millisecond),
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
