package clock

import (
	"sort"
	"sync"
	"time"
)

// FakeClock only moves when Advance is called. AfterFunc callbacks run
// synchronously inside Advance, so a callback must not call Advance itself.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*fakeTimer
	changed *sync.Cond
}

type fakeTimer struct {
	deadline time.Time
	ch       chan time.Time
	fn       func()
	done     bool
}

// NewFake returns a FakeClock reading start.
func NewFake(start time.Time) *FakeClock {
	c := &FakeClock{now: start}
	c.changed = sync.NewCond(&c.mu)
	return c
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.now
		return ch
	}
	c.add(&fakeTimer{deadline: c.now.Add(d), ch: ch})
	return ch
}

func (c *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	if d <= 0 {
		f()
		return &Timer{stop: func() bool { return false }}
	}

	c.mu.Lock()
	t := &fakeTimer{deadline: c.now.Add(d), fn: f}
	c.add(t)
	c.mu.Unlock()

	return &Timer{stop: func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		if t.done {
			return false
		}
		t.done = true
		c.changed.Broadcast()
		return true
	}}
}

// add must be called with c.mu held.
func (c *FakeClock) add(t *fakeTimer) {
	c.pending = append(c.pending, t)
	c.changed.Broadcast()
}

// Advance moves the clock forward by d and fires every timer that came due,
// earliest deadline first.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	target := c.now

	var due, rest []*fakeTimer
	for _, t := range c.pending {
		switch {
		case t.done:
		case !t.deadline.After(target):
			t.done = true
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	c.pending = rest
	c.changed.Broadcast()
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].deadline.Before(due[j].deadline)
	})
	for _, t := range due {
		if t.fn != nil {
			t.fn()
			continue
		}
		select {
		case t.ch <- target:
		default:
		}
	}
}

// WaitForTimers blocks until at least n timers are pending. Tests call it
// before Advance so a goroutine's timer registration cannot race the advance.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.pendingLocked() < n {
		c.changed.Wait()
	}
}

// PendingCount returns the number of timers that have neither fired nor
// been stopped.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingLocked()
}

func (c *FakeClock) pendingLocked() int {
	n := 0
	for _, t := range c.pending {
		if !t.done {
			n++
		}
	}
	return n
}
