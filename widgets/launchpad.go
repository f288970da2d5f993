package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Pad is one lit cell of the Launchpad mirror
type Pad struct {
	Row, Col int
	Color    [3]uint8
}

// RenderPad renders a single colored pad
func RenderPad(color [3]uint8) string {
	if color == ([3]uint8{}) {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#333")).Render("□")
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render("■")
}

// RenderPadGrid renders the 9x9 Launchpad face: rows 0-7 bottom to top, the
// top control row (row 8) above them and the side column (col 8) on the right
func RenderPadGrid(pads []Pad) string {
	var grid [9][9][3]uint8
	for _, p := range pads {
		if p.Row < 0 || p.Row > 8 || p.Col < 0 || p.Col > 8 {
			continue
		}
		grid[p.Row][p.Col] = p.Color
	}

	var lines []string
	for row := 8; row >= 0; row-- {
		var line strings.Builder
		for col := 0; col < 8; col++ {
			line.WriteString(RenderPad(grid[row][col]))
			line.WriteString(" ")
		}
		if row < 8 {
			line.WriteString(" ")
			line.WriteString(RenderPad(grid[row][8]))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// RenderBits renders the low n bits of v, least significant first
func RenderBits(v uint16, n int, on, off rune, onStyle, offStyle lipgloss.Style) string {
	var out strings.Builder
	for i := 0; i < n; i++ {
		if v&(1<<i) != 0 {
			out.WriteString(onStyle.Render(string(on)))
		} else {
			out.WriteString(offStyle.Render(string(off)))
		}
		out.WriteString(" ")
	}
	return strings.TrimRight(out.String(), " ")
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
