package resilience

import (
	"context"
	"time"
)

const defaultPollInterval = time.Second

// PollConfig configures a polling loop.
type PollConfig struct {
	// Interval is the delay between a not-done poll and the next one. Defaults to 1s.
	Interval time.Duration
	// OnPoll is called after each poll that did not finish the operation.
	OnPoll func(attempt int, next time.Duration)
}

// PollFunc performs one poll. done reports whether the operation has finished.
type PollFunc[T any] func(ctx context.Context, attempt int) (result T, done bool, err error)

// Poll calls fn until it reports done, returns an error, or ctx ends.
// The first poll happens immediately; later polls wait Interval on a
// context-aware timer. No sleep follows the final poll. Callers bound the
// whole loop through ctx.
func Poll[T any](ctx context.Context, cfg PollConfig, fn PollFunc[T]) (T, error) {
	var zero T

	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, done, err := fn(ctx, attempt)
		if err != nil {
			return zero, err
		}
		if done {
			return result, nil
		}

		if cfg.OnPoll != nil {
			cfg.OnPoll(attempt, interval)
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}
