// Package clock lets submission and confirmation delays run against either
// wall time or a manually advanced fake in tests.
package clock

import "time"

// Clock is the subset of the time package the feedback form needs.
type Clock interface {
	Now() time.Time
	// After delivers the current time once d has elapsed. A non-positive d
	// delivers immediately.
	After(d time.Duration) <-chan time.Time
	// AfterFunc calls f once d has elapsed. The returned Timer can cancel
	// the call.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a cancellable scheduled call.
type Timer struct {
	stop func() bool
}

// Stop cancels the call. It reports false if the call already ran or was
// already stopped.
func (t *Timer) Stop() bool {
	if t == nil || t.stop == nil {
		return false
	}
	return t.stop()
}
