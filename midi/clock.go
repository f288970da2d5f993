package midi

import (
	"fmt"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-turing/debug"
	"go-turing/panel"
)

// ClockIn turns MIDI realtime messages into gate pulses: one clock gate every
// divider timing clocks, and a reset gate on Start. It is a panel.PinReader.
type ClockIn struct {
	id       string
	divider  uint32
	ticks    atomic.Uint32
	running  atomic.Bool
	pins     panel.Pins
	stopFunc func()
}

// NewClockIn creates a clock input. Call Listen to attach it to a port, or
// feed it messages with Handle.
func NewClockIn(id string, divider int) *ClockIn {
	if divider < 1 {
		divider = 6
	}
	c := &ClockIn{id: id, divider: uint32(divider)}
	c.running.Store(true)
	return c
}

// Listen starts receiving from inPort
func (c *ClockIn) Listen(inPort drivers.In) error {
	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		c.Handle(msg)
	}, gomidi.UseTimeCode())
	if err != nil {
		return fmt.Errorf("open clock input: %w", err)
	}
	c.stopFunc = stop
	return nil
}

// Handle processes one message
func (c *ClockIn) Handle(msg gomidi.Message) {
	switch {
	case msg.Is(gomidi.TimingClockMsg):
		if !c.running.Load() {
			return
		}
		// The first clock after Start is the downbeat
		if (c.ticks.Add(1)-1)%c.divider == 0 {
			c.pins.Pulse(panel.ClockGate)
		}
	case msg.Is(gomidi.StartMsg):
		c.ticks.Store(0)
		c.running.Store(true)
		c.pins.Pulse(panel.ResetGate)
		debug.Log("clock", "start from %s", c.id)
	case msg.Is(gomidi.ContinueMsg):
		c.running.Store(true)
	case msg.Is(gomidi.StopMsg):
		c.running.Store(false)
		debug.Log("clock", "stop from %s", c.id)
	}
}

func (c *ClockIn) ReadPins() uint32 {
	return c.pins.ReadPins()
}

// ID returns the port name
func (c *ClockIn) ID() string { return c.id }

func (c *ClockIn) Close() error {
	if c.stopFunc != nil {
		c.stopFunc()
	}
	return nil
}
