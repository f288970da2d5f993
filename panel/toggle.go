package panel

import (
	"go-turing/debug"
	"go-turing/mode"
)

// Position of the write toggle. It is momentary both ways and springs back to
// Center.
type Position int

const (
	Center Position = iota
	Up
	Down
)

// ToggleCmd is what a toggle gesture asks the sequencer to do
type ToggleCmd int

const (
	NoToggle ToggleCmd = iota
	SetBit
	ClearBit
	Exit
	MoreOctaves
	LessOctaves
)

var toggleNames = []string{"None", "SetBit", "ClearBit", "Exit", "MoreOctaves", "LessOctaves"}

func (c ToggleCmd) String() string {
	if c < 0 || int(c) >= len(toggleNames) {
		return "ToggleCmd(?)"
	}
	return toggleNames[c]
}

// Throw is one completed gesture on either side of the toggle
type Throw struct {
	Up      bool
	Gesture mode.Event
}

// Resolve turns a throw into a command. Up means "write a one" only while
// performing; in the other modes it backs out instead.
func (t Throw) Resolve(performing bool) ToggleCmd {
	switch t.Gesture {
	case mode.DoubleClick:
		if t.Up {
			return MoreOctaves
		}
		return LessOctaves
	case mode.Click, mode.Hold, mode.ClickHold:
		if !t.Up {
			return ClearBit
		}
		if performing {
			return SetBit
		}
		return Exit
	}
	return NoToggle
}

// Toggle decodes both sides of the write switch
type Toggle struct {
	up, down *Button
	throws   chan Throw
}

// NewToggle creates a centered toggle buffering up to buf throws
func NewToggle(t Timing, buf int) *Toggle {
	return &Toggle{
		up:     NewButton(t),
		down:   NewButton(t),
		throws: make(chan Throw, buf),
	}
}

// Set moves the switch. Safe from any goroutine.
func (t *Toggle) Set(p Position) {
	t.up.Set(p == Up)
	t.down.Set(p == Down)
}

// Inject queues a throw directly. Safe from any goroutine.
func (t *Toggle) Inject(th Throw) {
	t.emit(th.Up, th.Gesture)
}

// Throws delivers completed gestures to the main loop
func (t *Toggle) Throws() <-chan Throw {
	return t.throws
}

// Service runs one decoding tick for both sides
func (t *Toggle) Service() {
	t.emit(true, t.up.Service())
	t.emit(false, t.down.Service())
}

func (t *Toggle) emit(up bool, ev mode.Event) {
	if ev == mode.None || ev == mode.Press {
		return
	}
	select {
	case t.throws <- Throw{Up: up, Gesture: ev}:
	default:
		debug.LogEvery(10, "panel", "toggle throw dropped: %s", ev)
	}
}
