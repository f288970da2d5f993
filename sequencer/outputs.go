package sequencer

import (
	"go-turing/hwio"
	"go-turing/mode"
	"go-turing/turing"
)

// Outputs is everything the module shows to the outside world after a
// change. Renderers get a copy.
type Outputs struct {
	// Jacks
	Triggers uint8           // trigger outputs currently high
	CV       [hwio.NumCV]int // pitch CVs in semitones, updated on clocked steps
	DAC8     uint8           // 8 bit DAC value
	Drunk    int             // scale degree of the random walk melody
	Clocked  bool            // this frame comes from a step that advanced the pattern

	// Register and transport
	Pattern      uint8
	Register     uint16
	Length       int
	Step         int
	Bank         int
	NextBank     int
	LoadPending  bool
	ResetPending bool
	Banks        [turing.NumBanks]turing.Pattern
	FaderBanks   [turing.NumBanks][8]float64

	// Panel
	Mode      mode.Mode
	Slot      int // selected slot in load/save, -1 otherwise
	Octaves   int
	Bias      float64
	CVIn      float64
	Flash     uint8
	Leds      uint8 // main LED row
	FaderLeds uint8
}

// Position returns the current step as 0..Length-1
func (o Outputs) Position() int {
	if o.Length <= 0 {
		return 0
	}
	return ((o.Step % o.Length) + o.Length) % o.Length
}

// Renderer receives every published Outputs on the main loop. Render should
// not block for long.
type Renderer interface {
	Render(o Outputs) error
}

// RenderFunc adapts a function to Renderer
type RenderFunc func(o Outputs) error

func (f RenderFunc) Render(o Outputs) error { return f(o) }
