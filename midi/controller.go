package midi

// ControllerType identifies the kind of controller
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerLaunchpad
	ControllerSurface
)

// PadEvent is sent when a pad/button is pressed or released on a grid
// controller
type PadEvent struct {
	Row, Col int
	Velocity uint8
	Pressed  bool
}

// CCEvent is a control change from a knob or fader
type CCEvent struct {
	Channel    uint8
	Controller uint8
	Value      uint8
}

// LEDUpdate is one pad colour change
type LEDUpdate struct {
	Row, Col int
	Color    [3]uint8
	Channel  uint8
}

// Controller is the interface for MIDI input devices
type Controller interface {
	ID() string
	Type() ControllerType

	// Input events from the controller
	PadEvents() <-chan PadEvent // For grid controllers (Launchpad)
	CCEvents() <-chan CCEvent   // For knob boxes

	// Output to the controller
	SetLEDBatch(updates []LEDUpdate) error

	// Lifecycle
	Close() error
}

// Channel modes for LED updates
const (
	ChannelStatic uint8 = 0 // solid color
	ChannelFlash  uint8 = 1 // flashing A/B alternating
	ChannelPulse  uint8 = 2 // pulsing (fades)
)
