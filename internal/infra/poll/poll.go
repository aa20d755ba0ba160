package poll

import (
	"context"
	"errors"
	"time"

	"qcloud/internal/domain"
)

// Options controls the polling cadence.
type Options struct {
	// Interval is slept before every check.
	Interval time.Duration
	// Timeout bounds the whole loop. Zero waits until the context ends.
	Timeout time.Duration
}

// CheckFunc performs one inquiry. It returns done once a terminal state has
// been observed; an error stops the loop immediately.
type CheckFunc func(ctx context.Context) (done bool, err error)

// Until sleeps Interval and calls check until it reports done, fails, or
// the context or timeout ends. It returns the number of checks performed.
// Cancellation is reported as CANCELED, an expired timeout or deadline as
// DEADLINE_EXCEEDED.
func Until(ctx context.Context, opts Options, check CheckFunc) (int, error) {
	const op = "poll.Until"
	if check == nil {
		return 0, domain.Configf(op, "check function is required")
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = domain.DefaultPollInterval
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()

	polls := 0
	for {
		select {
		case <-ctx.Done():
			return polls, contextError(op, ctx.Err())
		case <-timer.C:
		}

		polls++
		done, err := check(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && isContextError(err) {
				return polls, contextError(op, ctxErr)
			}
			return polls, err
		}
		if done {
			return polls, nil
		}
		timer.Reset(interval)
	}
}

func contextError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.E(domain.CodeDeadlineExceeded, op, "polling deadline exceeded", err)
	}
	return domain.E(domain.CodeCanceled, op, "polling canceled", err)
}

func isContextError(err error) bool {
	code, ok := domain.CodeFrom(err)
	return ok && (code == domain.CodeCanceled || code == domain.CodeDeadlineExceeded)
}
