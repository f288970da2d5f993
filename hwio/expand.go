package hwio

import "math"

// Octave range limits for the faders
const (
	MinOctaves = 1
	MaxOctaves = 3
)

// ClampOctaves keeps an octave range inside what the faders support
func ClampOctaves(n int) int {
	return min(max(n, MinOctaves), MaxOctaves)
}

// FaderSemitones maps a normalized fader position onto 0..octaves*12
func FaderSemitones(v float64, octaves int) int {
	if math.IsNaN(v) {
		return 0
	}
	v = min(max(v, 0), 1)
	return int(math.Round(v * float64(ClampOctaves(octaves)*12)))
}

// Expander turns the visible pattern and fader settings into four pitch CVs:
//
//	A  sum of faders whose bit is set
//	B  sum of faders whose bit is clear
//	C  |A - B|
//	D  A, but only updated while bit 0 is high
//
// Values are in semitones. D holds state between calls.
type Expander struct {
	lastD int
}

// Expand computes the CVs for one step
func (e *Expander) Expand(pattern uint8, faders [8]int) [NumCV]int {
	var a, b int
	for ch, semis := range faders {
		if pattern&(1<<ch) != 0 {
			a += semis
		} else {
			b += semis
		}
	}

	c := a - b
	if c < 0 {
		c = -c
	}

	if pattern&1 != 0 {
		e.lastD = a
	}
	return [NumCV]int{a, b, c, e.lastD}
}

// DAC8 is the value written to the 8 bit DAC: the inverted pattern
func DAC8(pattern uint8) uint8 { return ^pattern }

// Volts converts semitones to a 1V/oct voltage
func Volts(semis int) float64 { return float64(semis) / 12 }

// Millivolts converts semitones to whole millivolts for the serial link
func Millivolts(semis int) uint16 {
	mv := math.Round(Volts(semis) * 1000)
	return uint16(min(max(mv, 0), math.MaxUint16))
}
