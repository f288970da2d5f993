package turing

// ShiftParams holds everything one iterate needs to know: how far to rotate
// each way, where the feedback tap is, where it lands and what the offset
// becomes afterwards.
type ShiftParams struct {
	immutable bool
	fireReset bool
	next      int8
	readIdx   int
	writeIdx  int
	leftAmt   int
	rightAmt  int
}

// Resolve computes the parameters for a single step in the direction of
// steps (positive = forward) against the transport's current length.
func (p *ShiftParams) Resolve(t *Transport, steps int8, inPlace bool) {
	p.immutable = inPlace
	p.fireReset = t.resetPending && !inPlace

	length := t.Length()
	var dir int8
	if steps > 0 {
		dir = 1
		p.leftAmt = 1
		p.rightAmt = RegisterBits - 1
		p.readIdx = length - 1
		p.writeIdx = 0
	} else {
		dir = -1
		p.leftAmt = RegisterBits - 1
		p.rightAmt = 1
		p.readIdx = Wrap(8-length, 0, RegisterBits-1)
		p.writeIdx = 7
	}

	if inPlace {
		p.next = t.offset
		return
	}
	p.next = t.offset + dir
	if p.next >= int8(length) || p.next <= -int8(length) {
		p.next = 0
	}
}

// Shift applies the rotation to reg and returns it along with the bit read
// from the feedback tap before rotating
func (p *ShiftParams) Shift(reg uint16) (uint16, bool) {
	tap := bitRead(reg, p.readIdx)
	return (reg << uint(p.leftAmt)) | (reg >> uint(p.rightAmt)), tap
}

// Next returns the offset after this step
func (p *ShiftParams) Next() int8 { return p.next }

// Immutable reports whether this step leaves the pattern's bits alone
func (p *ShiftParams) Immutable() bool { return p.immutable }

// FireReset reports whether this step services a pending reset
func (p *ShiftParams) FireReset() bool { return p.fireReset }

// ReadIdx returns the feedback tap position
func (p *ShiftParams) ReadIdx() int { return p.readIdx }

// WriteIdx returns where the fed-back bit lands
func (p *ShiftParams) WriteIdx() int { return p.writeIdx }
