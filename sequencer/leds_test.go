package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-turing/mode"
	"go-turing/sched"
	"go-turing/theme"
)

func TestMainLeds(t *testing.T) {
	tests := []struct {
		name string
		o    Outputs
		want uint8
	}{
		{"performance shows pattern", Outputs{Mode: mode.Performance, Pattern: 0xA5}, 0xA5},
		{"cancel shows pattern", Outputs{Mode: mode.Cancel, Pattern: 0x0F}, 0x0F},
		{"length 2", Outputs{Mode: mode.ChangeLength, Length: 2}, 0x02},
		{"length 8", Outputs{Mode: mode.ChangeLength, Length: 8}, 0x80},
		{"length 9", Outputs{Mode: mode.ChangeLength, Length: 9}, 0xFE},
		{"length 16", Outputs{Mode: mode.ChangeLength, Length: 16}, 0x7F},
		{"load on", Outputs{Mode: mode.PatternLoad, Slot: 3, Flash: sched.FlashFast}, 0x08},
		{"load off", Outputs{Mode: mode.PatternLoad, Slot: 3, Flash: sched.FlashSlow}, 0},
		{"save on", Outputs{Mode: mode.PatternSave, Slot: 7, Flash: sched.FlashSlow}, 0x80},
		{"save off", Outputs{Mode: mode.PatternSave, Slot: 7, Flash: sched.FlashFast}, 0},
		{"no slot", Outputs{Mode: mode.PatternSave, Slot: -1, Flash: sched.FlashSlow}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MainLeds(tt.o))
		})
	}
}

func TestFaderLeds(t *testing.T) {
	faders := [8]int{0, 3, 0, 12, 1, 0, 0, 24}
	assert.Equal(t, uint8(0x9A), FaderLeds(0xFF, faders))
	assert.Equal(t, uint8(0x08), FaderLeds(0x0C, faders))
	assert.Zero(t, FaderLeds(0, faders))
}

func TestGridLEDsBanks(t *testing.T) {
	th := theme.New(theme.Load("plasma"))
	o := Outputs{
		Mode:        mode.PatternLoad,
		Slot:        5,
		Bank:        1,
		NextBank:    3,
		LoadPending: true,
		Length:      8,
	}

	banks := map[int]LEDState{}
	for _, led := range GridLEDs(o, th) {
		if led.Row == rowBanks {
			banks[led.Col] = led
		}
	}
	require.Len(t, banks, 8)
	assert.Equal(t, uint8(1), banks[5].Channel, "selected slot flashes")
	assert.Equal(t, uint8(2), banks[3].Channel, "staged bank pulses")
	assert.Equal(t, uint8(0), banks[1].Channel)
	assert.Equal(t, rgb(th, theme.RoleWarning), banks[1].Color)
}

func TestGridLEDsStepCursor(t *testing.T) {
	th := theme.New(theme.Load("plasma"))
	o := Outputs{Length: 12, Step: 10}

	for _, led := range GridLEDs(o, th) {
		if led.Row == rowSteps2 && led.Col == 2 {
			assert.Equal(t, rgb(th, theme.RoleCursor), led.Color)
			return
		}
	}
	t.Fatal("no cursor LED on the second step row")
}

func TestGridLEDsBiasBar(t *testing.T) {
	th := theme.New(theme.Load("plasma"))
	lit := 0
	for _, led := range GridLEDs(Outputs{Length: 8, Bias: 0.5}, th) {
		if led.Col == colSide && led.Color != off {
			lit++
		}
	}
	assert.Equal(t, 5, lit)
}

func TestDiffLEDs(t *testing.T) {
	a := LEDState{Row: 1, Col: 1, Color: [3]uint8{1, 2, 3}}
	b := LEDState{Row: 2, Col: 2, Color: [3]uint8{4, 5, 6}}

	updates, prev := diffLEDs(nil, []LEDState{a, b})
	assert.Len(t, updates, 2)

	updates, prev = diffLEDs(prev, []LEDState{a, b})
	assert.Empty(t, updates, "unchanged frame sends nothing")

	b.Color = [3]uint8{9, 9, 9}
	updates, prev = diffLEDs(prev, []LEDState{a, b})
	require.Len(t, updates, 1)
	assert.Equal(t, [3]uint8{9, 9, 9}, updates[0].Color)

	updates, _ = diffLEDs(prev, []LEDState{a})
	require.Len(t, updates, 1)
	assert.Equal(t, 2, updates[0].Row)
	assert.Equal(t, [3]uint8{}, updates[0].Color, "dropped LEDs are cleared")
}
