package turing

import (
	"math/rand"
	"sync/atomic"
)

// Control is a normalized (0..1) control reading. Implementations return the
// last known good value when a fresh sample isn't ready.
type Control interface {
	Read() float64
}

// Fixed is a Control that always reads the same value
type Fixed float64

func (f Fixed) Read() float64 { return float64(f) }

// Thresholds for the coin toss, normalized to full scale (3135 mV on the panel)
const (
	DefaultThreshLow  = 265.0 / 3135.0
	DefaultThreshHigh = 3125.0 / 3135.0
	DefaultThreshCV   = 500.0 / 3135.0
)

// Stochasticizer decides whether the bit fed back into the register gets
// flipped. The bias knob sets the odds; the CV input swaps the meaning of the
// locked (fully clockwise / counter-clockwise) positions.
type Stochasticizer struct {
	ThreshLow  float64
	ThreshHigh float64
	ThreshCV   float64

	bias Control
	cv   Control
	rng  *rand.Rand

	// One-shot overrides from the write toggle
	setPending   atomic.Bool
	clearPending atomic.Bool
}

// NewStochasticizer creates a probability source reading bias and cv
func NewStochasticizer(bias, cv Control, rng *rand.Rand) *Stochasticizer {
	if cv == nil {
		cv = Fixed(0)
	}
	return &Stochasticizer{
		ThreshLow:  DefaultThreshLow,
		ThreshHigh: DefaultThreshHigh,
		ThreshCV:   DefaultThreshCV,
		bias:       bias,
		cv:         cv,
		rng:        rng,
	}
}

// SetBit forces the next tossed bit to 1
func (s *Stochasticizer) SetBit() {
	s.clearPending.Store(false)
	s.setPending.Store(true)
}

// ClearBit forces the next tossed bit to 0
func (s *Stochasticizer) ClearBit() {
	s.setPending.Store(false)
	s.clearPending.Store(true)
}

// Stochasticize returns the bit to write back into the register
func (s *Stochasticizer) Stochasticize(bit bool) bool {
	if s.setPending.Swap(false) {
		return true
	}
	if s.clearPending.Swap(false) {
		return false
	}

	p := s.bias.Read()
	cvHigh := s.cv.Read() > s.ThreshCV

	if p > s.ThreshHigh {
		// Locked: loop unchanged unless CV says otherwise
		return bit != cvHigh
	}
	if p < s.ThreshLow {
		// Double-length loop: always flip unless CV says otherwise
		return bit == cvHigh
	}

	if s.rng.Float64() > p {
		return !bit
	}
	return bit
}
