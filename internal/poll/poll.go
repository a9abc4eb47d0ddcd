package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/utils/clock"
)

// ErrDeadline is returned by Until when the deadline elapses before the
// condition reports completion.
var ErrDeadline = errors.New("poll: deadline exceeded")

// Condition is evaluated once per round. Returning done=true or a non-nil
// error ends the wait.
type Condition func(ctx context.Context) (done bool, err error)

// Options configures a wait.
type Options struct {
	// Interval is the suspension between two rounds. Must be positive.
	Interval time.Duration
	// Deadline bounds the total wait, measured on Clock from the first
	// round. Zero means no deadline; the context is then the only bound.
	Deadline time.Duration
	// Clock defaults to the real clock.
	Clock clock.Clock
}

// Until runs cond immediately and then once per interval until it reports
// done, returns an error, the deadline elapses, or ctx is done. No round
// starts at or after the deadline: the last suspension is shortened to the
// time that remains and the wait then ends with ErrDeadline.
func Until(ctx context.Context, opts Options, cond Condition) error {
	if opts.Interval <= 0 {
		return fmt.Errorf("poll: interval must be positive, got %s", opts.Interval)
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}

	start := clk.Now()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		done, err := cond(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		wait := opts.Interval
		if opts.Deadline > 0 {
			remaining := opts.Deadline - clk.Since(start)
			if remaining <= 0 {
				return ErrDeadline
			}
			wait = min(wait, remaining)
		}

		timer := clk.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C():
		}

		if opts.Deadline > 0 && clk.Since(start) >= opts.Deadline {
			return ErrDeadline
		}
	}
}

// IsTimeout reports whether err means the wait gave up because time ran out:
// either the poll deadline elapsed or ctx itself hit its deadline. A failed
// call that merely wraps context.DeadlineExceeded, such as a transport
// timeout on a single request, is not a timeout of the wait.
func IsTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, ErrDeadline) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) && errors.Is(ctx.Err(), context.DeadlineExceeded)
}
