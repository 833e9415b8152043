// Package clock provides one-shot and repeating timers behind an interface so that
// timer-driven state can be tested without sleeping.
package clock

import (
	"sync"
	"time"
)

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop prevents future firings. It reports whether the timer was still active.
	Stop() bool
}

// Clock schedules callbacks.
type Clock interface {
	Now() time.Time
	// After runs f once after d.
	After(d time.Duration, f func()) Timer
	// Every runs f every d until the returned timer is stopped.
	Every(d time.Duration, f func()) Timer
}

// Real is a Clock backed by the time package. Callbacks run on their own goroutines.
type Real struct{}

// Now returns the current wall-clock time.
func (Real) Now() time.Time { return time.Now() }

// After runs f once after d.
func (Real) After(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Every runs f every d until stopped.
func (Real) Every(d time.Duration, f func()) Timer {
	t := &ticker{
		ticker: time.NewTicker(d),
		done:   make(chan struct{}),
	}
	go t.loop(f)
	return t
}

type ticker struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *ticker) loop(f func()) {
	for {
		select {
		case <-t.done:
			return
		case <-t.ticker.C:
			f()
		}
	}
}

func (t *ticker) Stop() bool {
	stopped := false
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
		stopped = true
	})
	return stopped
}

var _ Clock = Real{}
