package turing

import "math/rand"

// ResetPolicy decides when a reset lands on the visible step
type ResetPolicy int

const (
	// ResetOnClock rotates the pattern back to step 0 right away but leaves
	// the step counter alone until the next clock, which plays step 0
	ResetOnClock ResetPolicy = iota
	// ResetImmediate zeroes the step counter as soon as the reset arrives;
	// the next clock plays step 1
	ResetImmediate
)

func (p ResetPolicy) String() string {
	if p == ResetImmediate {
		return "immediate"
	}
	return "clock"
}

// ParseResetPolicy maps a config string to a policy, defaulting to ResetOnClock
func ParseResetPolicy(s string) ResetPolicy {
	if s == "immediate" {
		return ResetImmediate
	}
	return ResetOnClock
}

// Pattern is one saved bank: a normalized register and its length
type Pattern struct {
	Reg       uint16 `json:"reg"`
	LengthIdx int    `json:"lengthIdx"`
}

// Length returns the pattern's length in steps
func (p Pattern) Length() int {
	return StepLengths[clampLengthIndex(p.LengthIdx)]
}

// Register is the shift engine: a 16-bit working register that rotates once
// per clock, plus the bank of saved patterns it can switch between on the
// downbeat.
type Register struct {
	working   uint16
	banks     [NumBanks]Pattern
	transport Transport
	shifter   ShiftParams
	stoch     *Stochasticizer
	rng       *rand.Rand
	policy    ResetPolicy
}

// NewRegister creates a register whose banks are seeded with distinct
// pseudo-random 8-step patterns. The working register starts on bank 0.
func NewRegister(stoch *Stochasticizer, rng *rand.Rand, policy ResetPolicy) *Register {
	r := &Register{
		transport: *NewTransport(),
		stoch:     stoch,
		rng:       rng,
		policy:    policy,
	}
	r.seedBanks()
	r.working = r.banks[0].Reg
	return r
}

func (r *Register) seedBanks() {
	for bk := range r.banks {
	retry:
		for {
			reg := Norm(uint16(r.rng.Intn(1<<RegisterBits)), 8)
			if reg == 0 || reg == 0xFFFF {
				continue
			}
			for prev := 0; prev < bk; prev++ {
				if r.banks[prev].Reg == reg {
					continue retry
				}
			}
			r.banks[bk] = Pattern{Reg: reg, LengthIdx: DefaultLengthIndex}
			break
		}
	}
}

// Iterate advances the pattern one step in the direction of steps. In-place
// iterates rotate the pattern without touching the step counter or the
// probability source.
func (r *Register) Iterate(steps int8, inPlace bool) {
	t := &r.transport
	r.shifter.Resolve(t, steps, inPlace)

	if r.shifter.FireReset() {
		// Pattern was already rotated to step 0 by Reset
		t.resetPending = false
		t.wasReset = true
		t.offset = 0
		return
	}

	if !inPlace {
		t.wasReset = false
		t.newPatternLoaded = false
	}

	reg, bit := r.shifter.Shift(r.working)
	if !r.shifter.Immutable() {
		bit = r.stoch.Stochasticize(bit)
	}
	r.working = bitWrite(reg, r.shifter.WriteIdx(), bit)
	t.offset = r.shifter.Next()

	// Bank switches wait for the downbeat
	if !inPlace && t.newLoadPending && t.offset == 0 {
		r.load()
	}
}

func (r *Register) load() {
	t := &r.transport
	p := r.banks[t.nextBank]
	r.working = p.Reg
	t.load(p.LengthIdx)
}

// Reset sends the pattern back to its first step. A staged bank load is
// applied immediately since a reset is a downbeat.
func (r *Register) Reset() {
	t := &r.transport
	if t.newLoadPending {
		r.load()
		t.ReAnchor()
	}

	if t.resetPending {
		return
	}

	r.working = RotateToZero(r.working, t.offset)
	if r.policy == ResetImmediate {
		t.offset = 0
		t.wasReset = true
		return
	}
	t.FlagForReset()
}

// effectiveOffset is the offset the working register is currently rotated by.
// While a reset is pending the register is already back at step 0.
func (r *Register) effectiveOffset() int8 {
	if r.transport.resetPending {
		return 0
	}
	return r.transport.offset
}

// ChangeLength moves the length one table entry up (amt > 0) or down
func (r *Register) ChangeLength(amt int8) {
	switch {
	case amt > 0:
		r.transport.LengthPlus()
	case amt < 0:
		r.transport.LengthMinus()
	}
}

// SavePattern stores the working register, as seen from step 0 and
// normalized to the current length, into a bank. The live register and step
// counter are left alone.
func (r *Register) SavePattern(bank int) {
	bank = Wrap(bank, 0, NumBanks-1)
	scratch := RotateToZero(r.working, r.effectiveOffset())
	r.banks[bank] = Pattern{
		Reg:       Norm(scratch, r.transport.Length()),
		LengthIdx: r.transport.lengthIdx,
	}
}

// SetNextPattern stages a bank to load on the next downbeat. Staging the
// current bank reloads it, undoing any changes since it was saved.
func (r *Register) SetNextPattern(bank int) {
	r.transport.SetNextPattern(Wrap(bank, 0, NumBanks-1))
}

// SetBit forces the next fed-back bit high
func (r *Register) SetBit() { r.stoch.SetBit() }

// ClearBit forces the next fed-back bit low
func (r *Register) ClearBit() { r.stoch.ClearBit() }

// DrunkenIndex takes one step of a random walk over 0..7. Small steps are
// much more likely than big ones, so the melody tends to cluster.
func (r *Register) DrunkenIndex() int {
	var step int8
	switch roll := r.rng.Intn(100); {
	case roll < 70:
		step = 1
	case roll < 90:
		step = 2
	default:
		step = 3
	}
	if r.rng.Intn(2) == 1 {
		step = -step
	}
	t := &r.transport
	t.drunkStep = Wrap(t.drunkStep+step, 0, 7)
	return int(t.drunkStep)
}

// Jam overwrites the working register
func (r *Register) Jam(reg uint16) { r.working = reg }

// Restore replaces the bank contents, e.g. from a snapshot on disk
func (r *Register) Restore(banks [NumBanks]Pattern) {
	for i, p := range banks {
		p.LengthIdx = clampLengthIndex(p.LengthIdx)
		r.banks[i] = p
	}
}

// Banks returns a copy of the pattern store
func (r *Register) Banks() [NumBanks]Pattern { return r.banks }

// BankPattern returns the pattern saved in bank
func (r *Register) BankPattern(bank int) Pattern {
	return r.banks[Wrap(bank, 0, NumBanks-1)]
}

// ZeroView returns the working register rotated back to step 0
func (r *Register) ZeroView() uint16 {
	return RotateToZero(r.working, r.effectiveOffset())
}

// Pattern returns the full 16-bit working register
func (r *Register) Pattern() uint16 { return r.working }

// Output returns the visible (low) byte of the working register
func (r *Register) Output() uint8 { return uint8(r.working & 0xFF) }

// Triggers returns the trigger outputs for the current step
func (r *Register) Triggers() uint8 { return PulseIt(r.working) }

func (r *Register) Length() int            { return r.transport.Length() }
func (r *Register) LengthIndex() int       { return r.transport.lengthIdx }
func (r *Register) Step() int8             { return r.transport.offset }
func (r *Register) Bank() int              { return r.transport.currentBank }
func (r *Register) NextBank() int          { return r.transport.nextBank }
func (r *Register) LoadPending() bool      { return r.transport.newLoadPending }
func (r *Register) ResetPending() bool     { return r.transport.resetPending }
func (r *Register) WasReset() bool         { return r.transport.wasReset }
func (r *Register) NewPatternLoaded() bool { return r.transport.newPatternLoaded }
func (r *Register) Policy() ResetPolicy    { return r.policy }

// RotateToZero rotates reg so the step at offset becomes step 0
func RotateToZero(reg uint16, offset int8) uint16 {
	return Rotate(reg, -int(offset))
}

// RotateToCurrentStep is the inverse of RotateToZero
func RotateToCurrentStep(reg uint16, offset int8) uint16 {
	return Rotate(reg, int(offset))
}
