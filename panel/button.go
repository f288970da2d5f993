package panel

import (
	"sync/atomic"

	"go-turing/mode"
)

// Timing sets the gesture windows in service ticks (milliseconds at 1 kHz)
type Timing struct {
	HoldMs        int
	DoubleClickMs int
}

// DefaultTiming matches the feel of the hardware encoder
var DefaultTiming = Timing{HoldMs: 600, DoubleClickMs: 250}

type buttonPhase int

const (
	phaseIdle buttonPhase = iota
	phaseDown
	phaseWaitSecond
	phaseSecondDown
)

// Button decodes press/release into gestures. Set may be called from any
// goroutine; Service must only be called from the periodic source.
type Button struct {
	timing  Timing
	pressed atomic.Bool
	tapped  atomic.Bool

	// owned by the service goroutine
	phase      buttonPhase
	ms         int
	held       bool
	suppressed bool
}

// NewButton creates a released button
func NewButton(t Timing) *Button {
	return &Button{timing: t}
}

// Set records the physical state. A press that is released before the next
// tick still counts.
func (b *Button) Set(down bool) {
	b.pressed.Store(down)
	if down {
		b.tapped.Store(true)
	}
}

// Down reports whether the decoder currently sees the button held
func (b *Button) Down() bool {
	return b.phase == phaseDown || b.phase == phaseSecondDown
}

// Suppress swallows the click that would end the current press. The encoder
// uses it when the knob turns with the button held.
func (b *Button) Suppress() {
	if b.Down() {
		b.suppressed = true
	}
}

// Service advances the decoder one tick and returns the gesture completed on
// this tick, or mode.None.
func (b *Button) Service() mode.Event {
	now := b.pressed.Load()
	if b.tapped.Swap(false) {
		now = true
	}

	switch b.phase {
	case phaseIdle:
		if now {
			b.startPress(phaseDown)
			return mode.Press
		}

	case phaseDown, phaseSecondDown:
		if now {
			b.ms++
			if !b.held && b.ms >= b.timing.HoldMs {
				b.held = true
				if b.phase == phaseSecondDown {
					return mode.ClickHold
				}
				return mode.Hold
			}
			return mode.None
		}

		second := b.phase == phaseSecondDown
		b.phase = phaseIdle
		if b.held || b.suppressed {
			return mode.None
		}
		if second {
			return mode.DoubleClick
		}
		if b.timing.DoubleClickMs <= 0 {
			return mode.Click
		}
		b.phase = phaseWaitSecond
		b.ms = 0

	case phaseWaitSecond:
		if now {
			b.startPress(phaseSecondDown)
			return mode.Press
		}
		b.ms++
		if b.ms >= b.timing.DoubleClickMs {
			b.phase = phaseIdle
			return mode.Click
		}
	}
	return mode.None
}

func (b *Button) startPress(p buttonPhase) {
	b.phase = p
	b.ms = 0
	b.held = false
	b.suppressed = false
}
