// Package panel holds the input side of the module: gate jacks, the bias and
// CV controls, the encoder with its push button and the write toggle.
//
// Everything here is sampled from the periodic service tick and hands results
// to the main loop through atomics or buffered channels, so the tick never
// blocks on the consumer.
package panel

import "sync/atomic"

// Gate numbers on the pin word
const (
	ClockGate = 0
	ResetGate = 1
)

// PinReader returns the current level of every gate input, one bit per gate
type PinReader interface {
	ReadPins() uint32
}

// GateIn latches rising and falling edges of a PinReader between service
// ticks. Flags stay set until read.
type GateIn struct {
	pins  PinReader
	state atomic.Uint32
	rise  atomic.Uint32
	fall  atomic.Uint32
}

// NewGateIn watches pins. The first sample is taken as the resting state.
func NewGateIn(pins PinReader) *GateIn {
	g := &GateIn{pins: pins}
	g.state.Store(pins.ReadPins())
	return g
}

// Service samples the pins once. Call it from the periodic source.
func (g *GateIn) Service() {
	now := g.pins.ReadPins()
	prev := g.state.Swap(now)
	if r := now &^ prev; r != 0 {
		g.rise.Or(r)
	}
	if f := prev &^ now; f != 0 {
		g.fall.Or(f)
	}
}

// State returns the last sampled level of gate
func (g *GateIn) State(gate int) bool {
	return g.state.Load()&(1<<gate) != 0
}

// ReadRiseFlag reports whether gate rose since the last call, clearing it
func (g *GateIn) ReadRiseFlag(gate int) bool {
	mask := uint32(1) << gate
	return g.rise.And(^mask)&mask != 0
}

// ReadFallFlag reports whether gate fell since the last call, clearing it
func (g *GateIn) ReadFallFlag(gate int) bool {
	mask := uint32(1) << gate
	return g.fall.And(^mask)&mask != 0
}

func (g *GateIn) ConsumeClockEdge() bool { return g.ReadRiseFlag(ClockGate) }
func (g *GateIn) ConsumeResetEdge() bool { return g.ReadRiseFlag(ResetGate) }

// Pins is a PinReader driven from software: the terminal front panel, MIDI
// clock and tests. Pulse raises a gate for exactly one sample.
type Pins struct {
	level   atomic.Uint32
	pending atomic.Uint32
}

// Set holds gate high or low
func (p *Pins) Set(gate int, high bool) {
	mask := uint32(1) << gate
	if high {
		p.level.Or(mask)
	} else {
		p.level.And(^mask)
	}
}

// Pulse makes gate read high on the next sample only
func (p *Pins) Pulse(gate int) {
	p.pending.Or(uint32(1) << gate)
}

func (p *Pins) ReadPins() uint32 {
	return p.level.Load() | p.pending.Swap(0)
}

// AnyPins ORs several gate sources together, e.g. MIDI clock and the
// keyboard
type AnyPins []PinReader

func (a AnyPins) ReadPins() uint32 {
	var v uint32
	for _, p := range a {
		v |= p.ReadPins()
	}
	return v
}
