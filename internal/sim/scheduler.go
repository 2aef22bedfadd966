package sim

import (
	"slices"
	"time"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

// ManualClock only moves when told to.
type ManualClock struct {
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time { return c.now }

func (c *ManualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// Scheduler runs fn once after d. The returned func cancels fn if it has not
// run yet.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

type timer struct {
	due       time.Time
	seq       uint64
	fn        func()
	cancelled bool
}

// Queue is a Scheduler for hosts that own their event loop. Nothing runs
// until the host calls RunDue, so every callback executes on the host's
// goroutine.
type Queue struct {
	clock  Clock
	seq    uint64
	timers []*timer
}

func NewQueue(clock Clock) *Queue {
	return &Queue{clock: clock}
}

func (q *Queue) After(d time.Duration, fn func()) func() {
	q.seq++
	t := &timer{due: q.clock.Now().Add(max(d, 0)), seq: q.seq, fn: fn}
	i, _ := slices.BinarySearchFunc(q.timers, t, compareTimers)
	q.timers = slices.Insert(q.timers, i, t)
	return func() {
		if t.cancelled {
			return
		}
		t.cancelled = true
		if i := slices.Index(q.timers, t); i >= 0 {
			q.timers = slices.Delete(q.timers, i, i+1)
		}
	}
}

func compareTimers(a, b *timer) int {
	if c := a.due.Compare(b.due); c != 0 {
		return c
	}
	switch {
	case a.seq < b.seq:
		return -1
	case a.seq > b.seq:
		return 1
	}
	return 0
}

// RunDue runs every callback due now, in due order. Callbacks armed while
// RunDue is running wait for the next call. It returns how many ran.
func (q *Queue) RunDue() int {
	now := q.clock.Now()
	last := q.seq
	ran := 0
	for len(q.timers) > 0 {
		t := q.timers[0]
		if t.due.After(now) || t.seq > last {
			break
		}
		q.timers = q.timers[1:]
		t.cancelled = true
		t.fn()
		ran++
	}
	return ran
}

// Next reports the delay until the earliest pending callback.
func (q *Queue) Next() (time.Duration, bool) {
	if len(q.timers) == 0 {
		return 0, false
	}
	return max(q.timers[0].due.Sub(q.clock.Now()), 0), true
}

func (q *Queue) Len() int { return len(q.timers) }
