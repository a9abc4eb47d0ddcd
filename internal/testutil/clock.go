package testutil

import (
	"sync"
	"testing"
	"time"

	clocktesting "k8s.io/utils/clock/testing"
)

// Epoch is the fixed start time used by fake clocks in tests.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// NewFakeClock returns a fake clock set to Epoch.
func NewFakeClock() *clocktesting.FakeClock {
	return clocktesting.NewFakeClock(Epoch)
}

// DriveClock advances fc by step every time something is blocked on one of
// its timers, so polling loops run without real delays. Because the clock
// only moves while a waiter exists, the elapsed fake time equals the number
// of waits multiplied by step. The driver stops on test cleanup or when the
// returned function is called.
func DriveClock(t *testing.T, fc *clocktesting.FakeClock, step time.Duration) (stop func()) {
	t.Helper()

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for {
			select {
			case <-done:
				return
			default:
			}
			if fc.HasWaiters() {
				fc.Step(step)
				continue
			}
			time.Sleep(100 * time.Microsecond)
		}
	}()

	var once sync.Once
	stop = func() {
		once.Do(func() {
			close(done)
			<-finished
		})
	}
	t.Cleanup(stop)
	return stop
}
