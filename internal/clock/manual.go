package clock

import (
	"slices"
	"sync"
	"time"
)

// Manual is a Clock that only moves when Advance is called.
// Callbacks run synchronously inside Advance, on the caller's goroutine.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	timers []*manualTimer
}

type manualTimer struct {
	clock    *Manual
	id       int
	when     time.Time
	interval time.Duration // zero for one-shot timers
	f        func()
	stopped  bool
}

// NewManual creates a Manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the clock's current time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// After schedules f once, d after the current time.
func (m *Manual) After(d time.Duration, f func()) Timer {
	return m.schedule(d, 0, f)
}

// Every schedules f every d.
func (m *Manual) Every(d time.Duration, f func()) Timer {
	if d <= 0 {
		d = time.Nanosecond
	}
	return m.schedule(d, d, f)
}

func (m *Manual) schedule(d, interval time.Duration, f func()) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	t := &manualTimer{
		clock:    m,
		id:       m.nextID,
		when:     m.now.Add(d),
		interval: interval,
		f:        f,
	}
	m.timers = append(m.timers, t)
	return t
}

// Pending returns the number of active timers.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Advance moves the clock forward by d, firing due timers in time order.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		t := m.nextDue(target)
		if t == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = t.when
		if t.interval > 0 {
			t.when = t.when.Add(t.interval)
		} else {
			m.remove(t)
		}
		f := t.f
		m.mu.Unlock()

		f()
	}
}

// nextDue returns the earliest active timer due at or before target. Caller holds mu.
func (m *Manual) nextDue(target time.Time) *manualTimer {
	var next *manualTimer
	for _, t := range m.timers {
		if t.when.After(target) {
			continue
		}
		if next == nil || t.when.Before(next.when) || (t.when.Equal(next.when) && t.id < next.id) {
			next = t
		}
	}
	return next
}

// remove drops t from the active set. Caller holds mu.
func (m *Manual) remove(t *manualTimer) {
	t.stopped = true
	m.timers = slices.DeleteFunc(m.timers, func(x *manualTimer) bool { return x == t })
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.stopped {
		return false
	}
	t.clock.remove(t)
	return true
}

var _ Clock = (*Manual)(nil)
