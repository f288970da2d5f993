package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-turing/config"
	"go-turing/midi"
	"go-turing/mode"
	"go-turing/panel"
	"go-turing/store"
	"go-turing/turing"
)

const testTriggerTicks = 10

func testOptions() Options {
	return Options{
		Seed:      1,
		Bias:      1, // locked: the loop repeats exactly
		ServiceHz: 1000,
		TriggerMs: testTriggerTicks,
		Timing:    panel.Timing{HoldMs: 10, DoubleClickMs: 5},
		Surface:   config.DefaultConfig().Surface,
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(testOptions())
}

// clock sends one clock pulse and lets the gate fall again
func clock(m *Manager) {
	m.Pins().Pulse(panel.ClockGate)
	m.Advance(2)
}

func inject(m *Manager, evs ...mode.Event) {
	for _, ev := range evs {
		m.Encoder().Inject(ev)
		m.Poll()
	}
}

type recSaver struct {
	snaps []store.Snapshot
}

func (r *recSaver) Trigger(snap store.Snapshot) { r.snaps = append(r.snaps, snap) }

func TestClockAdvancesStep(t *testing.T) {
	m := newTestManager(t)
	start := m.Outputs()
	assert.Equal(t, 0, start.Position())
	assert.Equal(t, 8, start.Length)

	m.Pins().Pulse(panel.ClockGate)
	m.Advance(1)

	o := m.Outputs()
	assert.Equal(t, 1, o.Position())
	assert.True(t, o.Clocked)
	assert.Equal(t, m.reg.Triggers(), o.Triggers)
	assert.NotZero(t, o.Triggers, "bit 0 or its inverse always fires")
	assert.Equal(t, uint8(^o.Pattern), o.DAC8)
}

func TestLockedLoopRepeats(t *testing.T) {
	m := newTestManager(t)
	first := m.Outputs().Register
	for i := 0; i < 8; i++ {
		clock(m)
	}
	o := m.Outputs()
	assert.Equal(t, 0, o.Position())
	assert.Equal(t, turing.Norm(first, 8), turing.Norm(m.reg.ZeroView(), 8))
}

func TestTriggersFallAfterWidth(t *testing.T) {
	m := newTestManager(t)
	m.Pins().Pulse(panel.ClockGate)
	m.Advance(1)
	require.NotZero(t, m.Outputs().Triggers)

	m.Advance(testTriggerTicks - 1)
	assert.NotZero(t, m.Outputs().Triggers, "still inside the pulse")

	m.Advance(1)
	o := m.Outputs()
	assert.Zero(t, o.Triggers)
	assert.False(t, o.Clocked)
	assert.Equal(t, 1, o.Position(), "falling edge does not step")
}

func TestNewerStepOwnsTriggers(t *testing.T) {
	m := newTestManager(t)
	clock(m)
	m.Advance(testTriggerTicks - 4)
	clock(m) // second step before the first pulse ends

	m.Advance(2)
	assert.NotZero(t, m.Outputs().Triggers, "first pulse's timer must not cut the second")
	m.Advance(testTriggerTicks)
	assert.Zero(t, m.Outputs().Triggers)
}

func TestResetWaitsForClock(t *testing.T) {
	m := newTestManager(t)
	clock(m)
	clock(m)
	clock(m)
	require.Equal(t, 3, m.Outputs().Position())

	m.Pins().Pulse(panel.ResetGate)
	m.Advance(2)
	o := m.Outputs()
	assert.True(t, o.ResetPending)

	clock(m)
	o = m.Outputs()
	assert.False(t, o.ResetPending)
	assert.Equal(t, 0, o.Position())
}

func TestResetImmediate(t *testing.T) {
	opts := testOptions()
	opts.ResetPolicy = turing.ResetImmediate
	m := NewManager(opts)
	clock(m)
	clock(m)

	m.Pins().Pulse(panel.ResetGate)
	m.Advance(2)
	assert.Equal(t, 0, m.Outputs().Position())

	clock(m)
	assert.Equal(t, 1, m.Outputs().Position())
}

func TestEncoderStepsAndRotates(t *testing.T) {
	m := newTestManager(t)

	inject(m, mode.RotateRight)
	assert.Equal(t, 1, m.Outputs().Position())

	inject(m, mode.RotateLeft)
	assert.Equal(t, 0, m.Outputs().Position())

	before := m.Outputs().Register
	inject(m, mode.ShiftRight)
	o := m.Outputs()
	assert.Equal(t, 0, o.Position(), "rotate keeps the step")
	assert.NotEqual(t, before, o.Register)
}

func TestLengthMode(t *testing.T) {
	m := newTestManager(t)

	inject(m, mode.Click)
	assert.Equal(t, mode.ChangeLength, m.Outputs().Mode)
	assert.Equal(t, uint8(1<<7), m.Outputs().Leds, "length 8 lights the last LED")

	inject(m, mode.RotateRight)
	o := m.Outputs()
	assert.Equal(t, 9, o.Length)
	assert.Equal(t, uint8(0xFE), o.Leds)

	inject(m, mode.Click)
	assert.Equal(t, mode.Performance, m.Outputs().Mode)
	assert.Equal(t, 9, m.Outputs().Length)
}

func TestSaveCallsSaver(t *testing.T) {
	m := newTestManager(t)
	saver := &recSaver{}
	m.SetSaver(saver)
	clock(m)
	want := turing.Norm(m.reg.ZeroView(), 8)

	inject(m, mode.Hold, mode.RotateRight)
	assert.Equal(t, mode.PatternSave, m.Outputs().Mode)
	assert.Equal(t, 1, m.Outputs().Slot)

	inject(m, mode.Hold)
	o := m.Outputs()
	assert.Equal(t, mode.Performance, o.Mode)
	assert.Equal(t, want, o.Banks[1].Reg)
	assert.Equal(t, 1, o.Position(), "saving leaves the step alone")

	require.Len(t, saver.snaps, 1)
	assert.Equal(t, want, saver.snaps[0].Banks[1].Reg)
	require.Len(t, saver.snaps[0].Faders, turing.NumBanks)
	assert.Equal(t, 0.25, saver.snaps[0].Faders[1][1])
}

func TestLoadLandsOnDownbeat(t *testing.T) {
	m := newTestManager(t)
	bank2 := m.Outputs().Banks[2]

	inject(m, mode.DoubleClick, mode.RotateRight, mode.RotateRight, mode.DoubleClick)
	o := m.Outputs()
	assert.Equal(t, mode.Performance, o.Mode)
	assert.True(t, o.LoadPending)
	assert.Equal(t, 2, o.NextBank)
	assert.Equal(t, 0, o.Bank)

	for i := 0; i < 7; i++ {
		clock(m)
	}
	assert.Equal(t, 0, m.Outputs().Bank, "not before the downbeat")

	clock(m)
	o = m.Outputs()
	assert.False(t, o.LoadPending)
	assert.Equal(t, 2, o.Bank)
	assert.Equal(t, bank2.Reg, m.reg.ZeroView())
}

func TestToggleExitCancelsLoad(t *testing.T) {
	m := newTestManager(t)
	inject(m, mode.DoubleClick, mode.RotateRight)
	require.Equal(t, mode.PatternLoad, m.Outputs().Mode)

	m.Toggle().Inject(panel.Throw{Up: true, Gesture: mode.Click})
	m.Poll()

	o := m.Outputs()
	assert.Equal(t, mode.Performance, o.Mode)
	assert.False(t, o.LoadPending)
}

func TestToggleOctaves(t *testing.T) {
	m := newTestManager(t)
	require.Equal(t, 1, m.Outputs().Octaves)

	for i := 0; i < 4; i++ {
		m.Toggle().Inject(panel.Throw{Up: true, Gesture: mode.DoubleClick})
		m.Poll()
	}
	assert.Equal(t, 3, m.Outputs().Octaves)

	m.Toggle().Inject(panel.Throw{Gesture: mode.DoubleClick})
	m.Poll()
	assert.Equal(t, 2, m.Outputs().Octaves)
}

func TestToggleWritesBit(t *testing.T) {
	m := newTestManager(t)
	m.reg.Jam(0)

	m.Toggle().Inject(panel.Throw{Up: true, Gesture: mode.Click})
	m.Poll()
	clock(m)
	assert.Equal(t, uint16(1), m.reg.Pattern())

	m.reg.Jam(0xFFFF)
	m.Toggle().Inject(panel.Throw{Gesture: mode.Click})
	m.Poll()
	clock(m)
	assert.Equal(t, uint16(0xFFFE), m.reg.Pattern())
}

func TestHandlePadControls(t *testing.T) {
	m := newTestManager(t)

	m.HandlePad(midi.PadEvent{Row: rowControls, Col: padRight, Pressed: true})
	m.Advance(1)
	assert.Equal(t, 1, m.Outputs().Position())

	m.HandlePad(midi.PadEvent{Row: rowControls, Col: padClock, Pressed: true})
	m.Advance(2)
	assert.Equal(t, 2, m.Outputs().Position())

	m.HandlePad(midi.PadEvent{Row: rowBanks, Col: 5, Pressed: true})
	m.Poll()
	o := m.Outputs()
	assert.True(t, o.LoadPending)
	assert.Equal(t, 5, o.NextBank)

	m.HandlePad(midi.PadEvent{Row: 0, Col: colSide, Pressed: true})
	assert.Equal(t, 0.0, m.Bias().Read())
	m.HandlePad(midi.PadEvent{Row: 7, Col: colSide, Pressed: true})
	assert.Equal(t, 1.0, m.Bias().Read())
}

func TestHandlePadToggle(t *testing.T) {
	m := newTestManager(t)
	m.reg.Jam(0)

	m.HandlePad(midi.PadEvent{Row: rowControls, Col: padToggleUp, Pressed: true})
	m.Advance(1)
	m.HandlePad(midi.PadEvent{Row: rowControls, Col: padToggleUp})
	m.Advance(10) // past the double click window
	clock(m)
	assert.Equal(t, uint16(1), m.reg.Pattern())
}

func TestHandleCC(t *testing.T) {
	m := newTestManager(t)
	surface := config.DefaultConfig().Surface

	m.HandleCC(midi.CCEvent{Controller: surface.BiasCC, Value: 0})
	assert.Equal(t, 0.0, m.Bias().Read())

	m.HandleCC(midi.CCEvent{Controller: surface.CVCC, Value: 127})
	assert.Equal(t, 1.0, m.CV().Read())

	m.HandleCC(midi.CCEvent{Controller: surface.FaderCCs[3], Value: 0})
	assert.Equal(t, 0.0, m.Fader(3).Read())

	m.HandleCC(midi.CCEvent{Controller: 119, Value: 64})
	assert.Equal(t, 0.0, m.Bias().Read(), "unmapped controllers are ignored")
}

func TestRenderersSeeEveryStep(t *testing.T) {
	m := newTestManager(t)
	var clocked, total int
	m.AddRenderer(RenderFunc(func(o Outputs) error {
		total++
		if o.Clocked {
			clocked++
		}
		return nil
	}))

	for i := 0; i < 4; i++ {
		clock(m)
		m.Advance(testTriggerTicks)
	}
	assert.Equal(t, 4, clocked)
	assert.GreaterOrEqual(t, total, 8, "each step and each trigger release")
}

func TestInternalClock(t *testing.T) {
	opts := testOptions()
	opts.InternalBPM = 150 // sixteenths every 100 ticks
	m := NewManager(opts)

	m.Advance(100)
	assert.Equal(t, 0, m.Outputs().Position())
	m.Advance(1)
	assert.Equal(t, 1, m.Outputs().Position())
	m.Advance(100)
	assert.Equal(t, 2, m.Outputs().Position())
}

func TestRestoreSnapshot(t *testing.T) {
	m := newTestManager(t)
	clock(m)
	clock(m)

	snap := m.Snapshot()
	require.Len(t, snap.Faders, turing.NumBanks)
	snap.Banks[4] = turing.Pattern{Reg: 0x00A5, LengthIdx: 6}
	snap.Bank = 4
	snap.Faders[4] = [8]float64{1, 1, 0, 0, 0.5, 0.5, 0, 1}
	m.Restore(snap)
	m.Poll()

	o := m.Outputs()
	assert.Equal(t, 4, o.Bank)
	assert.Equal(t, uint16(0x00A5), o.Banks[4].Reg)
	assert.Equal(t, uint16(0x00A5), m.reg.ZeroView())
	assert.Equal(t, snap.Banks[4].Length(), o.Length, "the bank brings its length")
	for i, want := range snap.Faders[4] {
		assert.Equal(t, want, m.Fader(i).Read(), "fader %d", i)
	}
}

func TestRestoreWithoutFadersKeepsThem(t *testing.T) {
	m := newTestManager(t)
	m.Fader(2).Store(0.75)

	snap := m.Snapshot()
	snap.Faders = nil
	m.Restore(snap)
	m.Poll()

	assert.Equal(t, 0.75, m.Fader(2).Read())
}

func TestBankRecallsFadersOnDownbeat(t *testing.T) {
	m := newTestManager(t)
	saved := [8]float64{0, 0.25, 0.5, 0.75, 1, 0.5, 0.25, 0}
	for i, v := range saved {
		m.Fader(i).Store(v)
	}
	inject(m, mode.Hold, mode.RotateRight, mode.RotateRight, mode.RotateRight, mode.Hold)
	require.Equal(t, mode.Performance, m.Outputs().Mode)

	for i := range saved {
		m.Fader(i).Store(1)
	}
	inject(m, mode.DoubleClick, mode.RotateRight, mode.RotateRight, mode.RotateRight, mode.DoubleClick)
	require.Equal(t, 3, m.Outputs().NextBank)

	for i := 0; i < 7; i++ {
		clock(m)
	}
	assert.Equal(t, 1.0, m.Fader(0).Read(), "not before the downbeat")

	clock(m)
	assert.Equal(t, 3, m.Outputs().Bank)
	for i, want := range saved {
		assert.Equal(t, want, m.Fader(i).Read(), "fader %d", i)
	}

	// Moves after the load stick until the next one
	m.Fader(0).Store(0.5)
	clock(m)
	assert.Equal(t, 0.5, m.Fader(0).Read())
}

func TestResetRecallsFadersOfStagedBank(t *testing.T) {
	m := newTestManager(t)
	m.Fader(5).Store(0)
	inject(m, mode.Hold, mode.RotateRight, mode.Hold) // save bank 1
	m.Fader(5).Store(1)

	clock(m)
	inject(m, mode.DoubleClick, mode.RotateRight, mode.DoubleClick)
	m.Pins().Pulse(panel.ResetGate)
	m.Advance(2)

	assert.Equal(t, 1, m.Outputs().Bank)
	assert.Equal(t, 0.0, m.Fader(5).Read())
}

func TestFaderLedsFollowPattern(t *testing.T) {
	m := newTestManager(t)
	m.Fader(0).Store(0)
	m.reg.Jam(0x00FF)
	inject(m, mode.ShiftRight)

	o := m.Outputs()
	assert.Zero(t, o.FaderLeds&1, "fader 0 is down")
	assert.Equal(t, o.Pattern&0xFE, o.FaderLeds)
}
