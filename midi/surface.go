package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-turing/debug"
)

// SurfaceController handles a generic knob/fader box. It only reports control
// changes; it has no LEDs.
type SurfaceController struct {
	id       string
	inPort   drivers.In
	stopFunc func()

	padChan chan PadEvent
	ccChan  chan CCEvent
}

// NewSurfaceController creates a control surface (input only)
func NewSurfaceController(id string, inPort drivers.In) (*SurfaceController, error) {
	sc := &SurfaceController{
		id:      id,
		inPort:  inPort,
		padChan: make(chan PadEvent),
		ccChan:  make(chan CCEvent, 64),
	}

	// Open input
	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			var channel, cc, value uint8
			if msg.GetControlChange(&channel, &cc, &value) {
				select {
				case sc.ccChan <- CCEvent{Channel: channel, Controller: cc, Value: value}:
				default:
					debug.LogEvery(50, "surface", "cc dropped cc=%d", cc)
				}
			}
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		sc.stopFunc = stop
	}

	return sc, nil
}

func (sc *SurfaceController) ID() string {
	return sc.id
}

func (sc *SurfaceController) Type() ControllerType {
	return ControllerSurface
}

func (sc *SurfaceController) PadEvents() <-chan PadEvent {
	return sc.padChan // Surfaces don't have pads
}

func (sc *SurfaceController) CCEvents() <-chan CCEvent {
	return sc.ccChan
}

// SetLEDBatch is a no-op for surfaces
func (sc *SurfaceController) SetLEDBatch(updates []LEDUpdate) error {
	return nil
}

func (sc *SurfaceController) Close() error {
	if sc.stopFunc != nil {
		sc.stopFunc()
	}
	close(sc.padChan)
	close(sc.ccChan)
	return nil
}
