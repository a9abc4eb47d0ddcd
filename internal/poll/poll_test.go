package poll

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/livysubmit/internal/testutil"
)

func TestUntil_DoneOnFirstRound(t *testing.T) {
	t.Parallel()

	fc := testutil.NewFakeClock()
	calls := 0

	err := Until(context.Background(), Options{Interval: time.Second, Clock: fc}, func(context.Context) (bool, error) {
		calls++
		return true, nil
	})

	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.False(t, fc.HasWaiters(), "no timer should be armed after an immediate success")
}

func TestUntil_ElapsedIsRoundsMinusOneIntervals(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	fc := testutil.NewFakeClock()
	testutil.DriveClock(t, fc, time.Second)
	calls := 0

	// --- Act ---
	err := Until(context.Background(), Options{Interval: time.Second, Deadline: time.Minute, Clock: fc}, func(context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.Equal(t, 2*time.Second, fc.Since(testutil.Epoch))
}

func TestUntil_DeadlineExceeded(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	fc := testutil.NewFakeClock()
	testutil.DriveClock(t, fc, time.Second)
	calls := 0

	// --- Act ---
	err := Until(context.Background(), Options{Interval: time.Second, Deadline: 3 * time.Second, Clock: fc}, func(context.Context) (bool, error) {
		calls++
		return false, nil
	})

	// --- Assert ---
	require.ErrorIs(t, err, ErrDeadline)
	require.True(t, IsTimeout(context.Background(), err))
	require.Equal(t, 3, calls, "rounds at t=0,1,2; none at the deadline")
	require.Equal(t, 3*time.Second, fc.Since(testutil.Epoch))
}

func TestUntil_LastWaitIsShortenedToDeadline(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A 3s interval does not divide the 5s deadline. The driver steps in
	// 1s increments so the shortened final wait is observable.
	fc := testutil.NewFakeClock()
	testutil.DriveClock(t, fc, time.Second)
	var roundsAt []time.Duration

	// --- Act ---
	err := Until(context.Background(), Options{Interval: 3 * time.Second, Deadline: 5 * time.Second, Clock: fc}, func(context.Context) (bool, error) {
		roundsAt = append(roundsAt, fc.Since(testutil.Epoch))
		return len(roundsAt) == 3, nil
	})

	// --- Assert ---
	require.ErrorIs(t, err, ErrDeadline)
	require.Equal(t, []time.Duration{0, 3 * time.Second}, roundsAt, "the round that would succeed lies past the deadline")
	require.Equal(t, 5*time.Second, fc.Since(testutil.Epoch))
}

func TestIsTimeout(t *testing.T) {
	t.Parallel()

	expired, cancel := context.WithDeadline(context.Background(), time.Unix(0, 0))
	defer cancel()
	transport := fmt.Errorf("get session 1: %w", context.DeadlineExceeded)

	testCases := []struct {
		name string
		ctx  context.Context
		err  error
		want bool
	}{
		{name: "poll deadline", ctx: context.Background(), err: ErrDeadline, want: true},
		{name: "own context deadline", ctx: expired, err: context.DeadlineExceeded, want: true},
		{name: "request timeout on a live context", ctx: context.Background(), err: transport, want: false},
		{name: "cancelled", ctx: context.Background(), err: context.Canceled, want: false},
		{name: "other error", ctx: context.Background(), err: errors.New("boom"), want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, IsTimeout(tc.ctx, tc.err))
		})
	}
}

func TestUntil_ConditionErrorStopsImmediately(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	calls := 0

	err := Until(context.Background(), Options{Interval: time.Second, Clock: testutil.NewFakeClock()}, func(context.Context) (bool, error) {
		calls++
		return false, boom
	})

	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, calls)
}

func TestUntil_CancelledContextIsCheckedBeforeEachRound(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Until(ctx, Options{Interval: time.Second, Clock: testutil.NewFakeClock()}, func(context.Context) (bool, error) {
		t.Fatal("condition must not run on a cancelled context")
		return false, nil
	})

	require.ErrorIs(t, err, context.Canceled)
	require.False(t, IsTimeout(ctx, err))
}

func TestUntil_CancelWhileSuspended(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The clock is never stepped, so the only way out of the first
	// suspension is the cancellation.
	fc := testutil.NewFakeClock()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)

	// --- Act ---
	go func() {
		errCh <- Until(ctx, Options{Interval: time.Hour, Clock: fc}, func(context.Context) (bool, error) {
			return false, nil
		})
	}()
	require.Eventually(t, fc.HasWaiters, time.Second, time.Millisecond)
	cancel()

	// --- Assert ---
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Until did not return after cancellation")
	}
}

func TestUntil_RejectsNonPositiveInterval(t *testing.T) {
	t.Parallel()

	err := Until(context.Background(), Options{}, func(context.Context) (bool, error) { return true, nil })
	require.Error(t, err)
	require.Contains(t, err.Error(), "interval must be positive")
}
