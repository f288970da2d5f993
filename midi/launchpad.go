package midi

import (
	"fmt"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-turing/debug"
)

// LaunchpadController drives a Novation Launchpad X in programmer mode
type LaunchpadController struct {
	id       string
	send     func(msg gomidi.Message) error
	stopFunc func()
	sent     atomic.Uint64

	padChan chan PadEvent
	ccChan  chan CCEvent
}

// NewLaunchpadController opens the ports and switches the device to
// programmer mode. Either port may be nil.
func NewLaunchpadController(id string, inPort drivers.In, outPort drivers.Out) (*LaunchpadController, error) {
	lp := &LaunchpadController{
		id:      id,
		padChan: make(chan PadEvent, 32),
		ccChan:  make(chan CCEvent),
	}

	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		lp.send = send
		for _, msg := range lpxSetup() {
			if err := send(gomidi.SysEx(msg)); err != nil {
				return nil, fmt.Errorf("programmer mode: %w", err)
			}
		}
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, _ int32) {
			if ev, ok := decodePad(msg); ok {
				lp.sendPad(ev)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		lp.stopFunc = stop
	}

	return lp, nil
}

// decodePad turns a grid note or top row CC into a pad event. A note-on with
// velocity 0 is a release.
func decodePad(msg gomidi.Message) (PadEvent, bool) {
	var ch, key, val uint8
	switch {
	case msg.GetNoteOn(&ch, &key, &val), msg.GetNoteOff(&ch, &key, &val):
		if msg.Is(gomidi.NoteOffMsg) {
			val = 0
		}
		if row, col := noteToRowCol(key); row >= 0 {
			return PadEvent{Row: row, Col: col, Velocity: val, Pressed: val > 0}, true
		}
	case msg.GetControlChange(&ch, &key, &val):
		if row, col := ccToRowCol(key); row >= 0 {
			return PadEvent{Row: row, Col: col, Velocity: val, Pressed: val > 0}, true
		}
	}
	return PadEvent{}, false
}

func (lp *LaunchpadController) ID() string                 { return lp.id }
func (lp *LaunchpadController) Type() ControllerType       { return ControllerLaunchpad }
func (lp *LaunchpadController) PadEvents() <-chan PadEvent { return lp.padChan }

// CCEvents never delivers; knobs come from a separate surface
func (lp *LaunchpadController) CCEvents() <-chan CCEvent { return lp.ccChan }

func (lp *LaunchpadController) sendPad(ev PadEvent) {
	select {
	case lp.padChan <- ev:
	default:
		debug.LogEvery(10, "lp-recv", "pad event dropped row=%d col=%d", ev.Row, ev.Col)
	}
}

// SetLEDBatch lights the updated pads with as few SysEx messages as possible
func (lp *LaunchpadController) SetLEDBatch(updates []LEDUpdate) error {
	if lp.send == nil || len(updates) == 0 {
		return nil
	}

	for _, msg := range lpxLighting(updates) {
		if err := lp.send(gomidi.SysEx(msg)); err != nil {
			return fmt.Errorf("light %d pads: %w", len(updates), err)
		}
	}

	if n := lp.sent.Add(uint64(len(updates))); n%1000 < uint64(len(updates)) {
		debug.Log("lp-send", "leds sent=%d batch=%d", n, len(updates))
	}
	return nil
}

// Close darkens the face and stops listening
func (lp *LaunchpadController) Close() error {
	var err error
	if lp.send != nil {
		var dark []LEDUpdate
		for row := 0; row <= lpxTopRow; row++ {
			for col := 0; col <= lpxSide; col++ {
				if row == lpxTopRow && col == lpxSide {
					continue // logo
				}
				dark = append(dark, LEDUpdate{Row: row, Col: col})
			}
		}
		err = lp.SetLEDBatch(dark)
	}
	if lp.stopFunc != nil {
		lp.stopFunc()
	}
	close(lp.padChan)
	close(lp.ccChan)
	return err
}
