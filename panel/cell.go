package panel

import (
	"math"
	"sync/atomic"
)

// Cell is a normalized 0..1 control value shared between whoever moves the
// control and the sequencer reading it. A bad write (NaN) is dropped so the
// reader always sees the last good value.
type Cell struct {
	bits atomic.Uint64
}

// NewCell starts at v
func NewCell(v float64) *Cell {
	c := &Cell{}
	c.Store(v)
	return c
}

// Store sets the value, clamped to 0..1
func (c *Cell) Store(v float64) {
	if math.IsNaN(v) {
		return
	}
	v = min(max(v, 0), 1)
	c.bits.Store(math.Float64bits(v))
}

// Nudge moves the value by delta and returns the new value
func (c *Cell) Nudge(delta float64) float64 {
	if math.IsNaN(delta) {
		return c.Read()
	}
	for {
		old := c.bits.Load()
		v := min(max(math.Float64frombits(old)+delta, 0), 1)
		if c.bits.CompareAndSwap(old, math.Float64bits(v)) {
			return v
		}
	}
}

// StoreMIDI maps a 7 bit controller value onto 0..1
func (c *Cell) StoreMIDI(v uint8) {
	c.Store(float64(min(v, 127)) / 127)
}

// Read returns the last good value
func (c *Cell) Read() float64 {
	return math.Float64frombits(c.bits.Load())
}
