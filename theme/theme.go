// Package theme maps UI roles onto a GIMP palette so the terminal and the
// Launchpad share one set of colors.
package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Role is a position along the palette, 0 to 1
type Role float64

// Roles used across the UI. With plasma, low roles are deep purples and
// high ones run through orange to yellow.
const (
	RoleBG      Role = 0.0
	RoleSurface Role = 0.1
	RoleMuted   Role = 0.2
	RoleFG      Role = 0.4
	RoleAccent  Role = 0.5
	RoleCursor  Role = 0.6
	RoleActive  Role = 0.7
	RoleWarning Role = 0.8
	RoleSuccess Role = 1.0
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

// Symbols are the glyphs for register bits and LEDs
type Symbols struct {
	LedOn   rune // bit set / LED lit
	LedOff  rune // bit clear / LED dark
	Beyond  rune // past pattern length
	Current rune // current step
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{LedOn: '●', LedOff: '○', Beyond: '·', Current: '▲'},
	}
}

// RGB returns the raw color for a role, for the Launchpad
func (t *Theme) RGB(r Role) RGB {
	return t.Palette.Lookup(float64(r))
}

// Color returns the terminal color for a role
func (t *Theme) Color(r Role) lipgloss.Color {
	c := t.RGB(r)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}

// Style is a foreground style in the role's color
func (t *Theme) Style(r Role) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Color(r))
}
