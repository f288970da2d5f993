package sched

import (
	"sync"
	"sync/atomic"
)

type slot struct {
	remaining int
	fn        func()
}

// Deferred is a fixed-size arena of one-shot callbacks. Service counts them
// down from the periodic tick; Drain runs the ones that came due on the
// consumer's goroutine. Callbacks cannot be cancelled.
type Deferred struct {
	mu     sync.Mutex
	slots  []slot
	free   []int
	live   []int // scheduling order
	missed atomic.Int32
	ready  chan func()
}

// NewDeferred creates an arena holding at most capacity pending callbacks
func NewDeferred(capacity int) *Deferred {
	if capacity < 1 {
		capacity = 1
	}
	d := &Deferred{
		slots: make([]slot, capacity),
		free:  make([]int, capacity),
		live:  make([]int, 0, capacity),
		ready: make(chan func(), capacity),
	}
	for i := range d.free {
		d.free[i] = capacity - 1 - i
	}
	return d
}

// After schedules fn to become ready after ms ticks. It returns false when
// the arena is full.
func (d *Deferred) After(ms int, fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.free) == 0 {
		return false
	}
	idx := d.free[len(d.free)-1]
	d.free = d.free[:len(d.free)-1]
	d.slots[idx] = slot{remaining: ms, fn: fn}
	d.live = append(d.live, idx)
	return true
}

// Pending returns the number of callbacks not yet handed to Drain
func (d *Deferred) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// Service advances every countdown by one tick. If After holds the lock the
// tick is remembered and applied on the next call, so the tick never waits.
func (d *Deferred) Service() {
	if !d.mu.TryLock() {
		d.missed.Add(1)
		return
	}
	defer d.mu.Unlock()

	elapsed := 1 + int(d.missed.Swap(0))
	kept := d.live[:0]
	for _, idx := range d.live {
		s := &d.slots[idx]
		s.remaining -= elapsed
		if s.remaining > 0 {
			kept = append(kept, idx)
			continue
		}
		select {
		case d.ready <- s.fn:
			s.fn = nil
			d.free = append(d.free, idx)
		default:
			// consumer is behind, try again next tick
			kept = append(kept, idx)
		}
	}
	d.live = kept
}

// Drain runs every ready callback in the order it came due and returns how
// many ran
func (d *Deferred) Drain() int {
	n := 0
	for {
		select {
		case fn := <-d.ready:
			fn()
			n++
		default:
			return n
		}
	}
}
