package panel

import (
	"sync/atomic"

	"go-turing/debug"
	"go-turing/mode"
)

// Encoder is the rotary encoder with its push button. Turning the knob while
// the button is down produces shift events and cancels the click.
type Encoder struct {
	button    *Button
	acc       atomic.Int32
	perDetent int32
	events    chan mode.Event
}

// NewEncoder creates an encoder that reports one rotation every perDetent
// raw steps and buffers up to buf events
func NewEncoder(t Timing, perDetent, buf int) *Encoder {
	if perDetent < 1 {
		perDetent = 1
	}
	return &Encoder{
		button:    NewButton(t),
		perDetent: int32(perDetent),
		events:    make(chan mode.Event, buf),
	}
}

// Turn adds raw steps, positive is clockwise. Safe from any goroutine.
func (e *Encoder) Turn(steps int) {
	e.acc.Add(int32(steps))
}

// Press sets the push button state. Safe from any goroutine.
func (e *Encoder) Press(down bool) {
	e.button.Set(down)
}

// Inject queues a gesture directly, for inputs that cannot time a press
// (a terminal key, a test). Safe from any goroutine.
func (e *Encoder) Inject(ev mode.Event) {
	e.emit(ev)
}

// Events delivers decoded gestures to the main loop
func (e *Encoder) Events() <-chan mode.Event {
	return e.events
}

// Service runs one tick of gesture and rotation decoding
func (e *Encoder) Service() {
	if ev := e.button.Service(); ev != mode.None {
		e.emit(ev)
	}

	for {
		a := e.acc.Load()
		if a > -e.perDetent && a < e.perDetent {
			return
		}
		dir := int32(1)
		if a < 0 {
			dir = -1
		}
		if !e.acc.CompareAndSwap(a, a-dir*e.perDetent) {
			continue
		}

		shifted := e.button.Down()
		if shifted {
			e.button.Suppress()
		}
		switch {
		case shifted && dir > 0:
			e.emit(mode.ShiftRight)
		case shifted:
			e.emit(mode.ShiftLeft)
		case dir > 0:
			e.emit(mode.RotateRight)
		default:
			e.emit(mode.RotateLeft)
		}
	}
}

func (e *Encoder) emit(ev mode.Event) {
	select {
	case e.events <- ev:
	default:
		debug.LogEvery(10, "panel", "encoder event dropped: %s", ev)
	}
}
