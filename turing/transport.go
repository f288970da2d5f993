package turing

// Transport tracks where the sequencer is in its loop and what it's waiting
// to do on the next clock
type Transport struct {
	offset    int8 // steps since the last downbeat, in (-length, length)
	lengthIdx int

	currentBank int
	nextBank    int

	resetPending     bool
	newLoadPending   bool
	wasReset         bool
	newPatternLoaded bool

	drunkStep int8
}

// NewTransport creates a transport at the downbeat of bank 0 with length 8
func NewTransport() *Transport {
	return &Transport{lengthIdx: DefaultLengthIndex}
}

// Length returns the current pattern length in steps
func (t *Transport) Length() int {
	return StepLengths[t.lengthIdx]
}

// LengthIndex returns the position of the current length in StepLengths
func (t *Transport) LengthIndex() int {
	return t.lengthIdx
}

// Step returns the signed offset from the downbeat
func (t *Transport) Step() int8 {
	return t.offset
}

func (t *Transport) CurrentBank() int       { return t.currentBank }
func (t *Transport) NextBank() int          { return t.nextBank }
func (t *Transport) ResetPending() bool     { return t.resetPending }
func (t *Transport) NewLoadPending() bool   { return t.newLoadPending }
func (t *Transport) WasReset() bool         { return t.wasReset }
func (t *Transport) NewPatternLoaded() bool { return t.newPatternLoaded }

// LengthPlus moves one entry up the length table. No-op at the top.
func (t *Transport) LengthPlus() {
	if t.lengthIdx >= NumStepLengths-1 {
		return
	}
	t.lengthIdx++
	t.renormalize()
}

// LengthMinus moves one entry down the length table. No-op at the bottom.
func (t *Transport) LengthMinus() {
	if t.lengthIdx <= 0 {
		return
	}
	t.lengthIdx--
	t.renormalize()
}

func (t *Transport) renormalize() {
	t.offset %= int8(t.Length())
}

// SetNextPattern stages a bank to load on the next downbeat
func (t *Transport) SetNextPattern(bank int) {
	t.nextBank = bank
	t.newLoadPending = true
}

// FlagForReset zeroes the offset on the next mutating iterate
func (t *Transport) FlagForReset() {
	t.resetPending = true
}

// ReAnchor makes the current step the downbeat
func (t *Transport) ReAnchor() {
	t.offset = 0
}

// load switches to the staged bank and adopts its length
func (t *Transport) load(lengthIdx int) {
	t.currentBank = t.nextBank
	t.lengthIdx = clampLengthIndex(lengthIdx)
	t.renormalize()
	t.newLoadPending = false
	t.newPatternLoaded = true
}

func clampLengthIndex(idx int) int {
	if idx < 0 {
		return 0
	}
	if idx >= NumStepLengths {
		return NumStepLengths - 1
	}
	return idx
}
