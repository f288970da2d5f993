// Package sched provides the periodic service tick and one-shot deferred
// callbacks driven by it.
package sched

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultHz is the service rate of the hardware module
const DefaultHz = 1000

// Timer calls its registered service functions at a fixed rate from a single
// goroutine.
type Timer struct {
	hz       int
	ticks    atomic.Uint64
	mu       sync.Mutex
	services []func()
}

// NewTimer creates a timer ticking hz times a second
func NewTimer(hz int) *Timer {
	if hz <= 0 {
		hz = DefaultHz
	}
	return &Timer{hz: hz}
}

// Hz returns the tick rate
func (t *Timer) Hz() int { return t.hz }

// Period returns the time between ticks
func (t *Timer) Period() time.Duration {
	return time.Second / time.Duration(t.hz)
}

// Register adds fn to the functions run on every tick, in registration order
func (t *Timer) Register(fn func()) {
	t.mu.Lock()
	t.services = append(t.services, fn)
	t.mu.Unlock()
}

// Tick runs one tick by hand. Run calls it from the ticker; the simulator
// and tests call it directly.
func (t *Timer) Tick() {
	t.ticks.Add(1)
	t.mu.Lock()
	services := t.services
	t.mu.Unlock()
	for _, fn := range services {
		fn()
	}
}

// Run ticks until ctx is cancelled
func (t *Timer) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.Period())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.Tick()
		}
	}
}

// Millis returns milliseconds since the timer started
func (t *Timer) Millis() uint64 {
	return t.ticks.Load() * 1000 / uint64(t.hz)
}

// Flash bits for blinking LEDs
const (
	FlashFast uint8 = 1 << 0 // 80 ms period
	FlashSlow uint8 = 1 << 1 // 500 ms period
)

// FlashBits returns the current phase of the fast and slow blinkers
func (t *Timer) FlashBits() uint8 {
	return FlashAt(t.Millis())
}

// FlashAt returns the blinker phases at ms
func FlashAt(ms uint64) uint8 {
	var bits uint8
	if (ms/40)%2 == 1 {
		bits |= FlashFast
	}
	if (ms/250)%2 == 1 {
		bits |= FlashSlow
	}
	return bits
}
