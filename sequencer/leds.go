package sequencer

import (
	"go-turing/mode"
	"go-turing/sched"
	"go-turing/theme"
)

// LEDState describes the state of a single LED
type LEDState struct {
	Row, Col int
	Color    [3]uint8 // RGB color - controller maps to its palette
	Channel  uint8    // 0=static, 1=flash, 2=pulse
}

// MainLeds computes the main LED row. Performance shows the pattern; length
// mode shows the length; load blinks the selected slot fast and save blinks
// it slow.
func MainLeds(o Outputs) uint8 {
	switch o.Mode {
	case mode.Performance, mode.Cancel:
		return o.Pattern

	case mode.ChangeLength:
		// Lengths over 8 light everything except one LED
		if o.Length <= 8 {
			return 1 << (o.Length - 1)
		}
		return ^uint8(1 << (o.Length - 9))

	case mode.PatternLoad:
		if o.Slot < 0 || o.Flash&sched.FlashFast == 0 {
			return 0
		}
		return 1 << o.Slot

	case mode.PatternSave:
		if o.Slot < 0 || o.Flash&sched.FlashSlow == 0 {
			return 0
		}
		return 1 << o.Slot
	}
	return 0
}

// FaderLeds lights a fader when its bit is set and the fader is up
func FaderLeds(pattern uint8, faders [8]int) uint8 {
	var lit uint8
	for i, semis := range faders {
		if semis > 0 {
			lit |= 1 << i
		}
	}
	return pattern & lit
}

// Launchpad layout. Row 0 is the bottom row, row 8 the top control row,
// column 8 the side buttons.
const (
	rowControls = 0
	rowSteps2   = 1 // steps 9-16
	rowSteps1   = 2 // steps 1-8
	rowRegLow   = 3
	rowRegHigh  = 4
	rowFaders   = 5
	rowTriggers = 6
	rowMain     = 7
	rowBanks    = 8
	colSide     = 8
)

// Control pads on the bottom row
const (
	padLeft = iota
	padRight
	padButton
	padCancel
	padToggleDown
	padToggleUp
	padReset
	padClock
)

var off = [3]uint8{}

func modeRole(m mode.Mode) theme.Role {
	switch m {
	case mode.ChangeLength:
		return theme.RoleSuccess
	case mode.PatternLoad:
		return theme.RoleAccent
	case mode.PatternSave:
		return theme.RoleActive
	}
	return theme.RoleWarning
}

func rgb(th *theme.Theme, role theme.Role) [3]uint8 {
	return [3]uint8(th.RGB(role))
}

func bitLEDs(row int, bits uint8, on [3]uint8) []LEDState {
	leds := make([]LEDState, 0, 8)
	for col := 0; col < 8; col++ {
		c := off
		if bits&(1<<col) != 0 {
			c = on
		}
		leds = append(leds, LEDState{Row: row, Col: col, Color: c})
	}
	return leds
}

// GridLEDs renders the full Launchpad face for o
func GridLEDs(o Outputs, th *theme.Theme) []LEDState {
	var leds []LEDState

	leds = append(leds, bitLEDs(rowMain, o.Leds, rgb(th, modeRole(o.Mode)))...)
	leds = append(leds, bitLEDs(rowTriggers, o.Triggers, rgb(th, theme.RoleSuccess))...)
	leds = append(leds, bitLEDs(rowFaders, o.FaderLeds, rgb(th, theme.RoleMuted))...)
	leds = append(leds, bitLEDs(rowRegLow, uint8(o.Register), rgb(th, theme.RoleFG))...)
	leds = append(leds, bitLEDs(rowRegHigh, uint8(o.Register>>8), rgb(th, theme.RoleFG))...)

	// Step ruler across two rows
	pos := o.Position()
	for i := 0; i < 16; i++ {
		row, col := rowSteps1, i
		if i >= 8 {
			row, col = rowSteps2, i-8
		}
		c := off
		switch {
		case i == pos:
			c = rgb(th, theme.RoleCursor)
		case i < o.Length:
			c = rgb(th, theme.RoleSurface)
		}
		leds = append(leds, LEDState{Row: row, Col: col, Color: c})
	}

	// Controls
	controls := [8]theme.Role{
		padLeft:       theme.RoleMuted,
		padRight:      theme.RoleMuted,
		padButton:     modeRole(o.Mode),
		padCancel:     theme.RoleSurface,
		padToggleDown: theme.RoleFG,
		padToggleUp:   theme.RoleFG,
		padReset:      theme.RoleActive,
		padClock:      theme.RoleSuccess,
	}
	for col, role := range controls {
		leds = append(leds, LEDState{Row: rowControls, Col: col, Color: rgb(th, role)})
	}

	// Banks: current solid, staged pulsing, selected slot flashing
	for col := 0; col < 8; col++ {
		led := LEDState{Row: rowBanks, Col: col, Color: rgb(th, theme.RoleBG)}
		switch {
		case col == o.Slot:
			led.Color = rgb(th, modeRole(o.Mode))
			led.Channel = 1
		case o.LoadPending && col == o.NextBank:
			led.Color = rgb(th, theme.RoleAccent)
			led.Channel = 2
		case col == o.Bank:
			led.Color = rgb(th, theme.RoleWarning)
		}
		leds = append(leds, led)
	}

	// Side column is the bias knob as a bar, bottom to top
	level := int(o.Bias*7 + 0.5)
	for row := 0; row < 8; row++ {
		c := off
		if row <= level {
			c = rgb(th, theme.Role(float64(row)/7))
		}
		leds = append(leds, LEDState{Row: row, Col: colSide, Color: c})
	}

	return leds
}
