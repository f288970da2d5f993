package theme

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

//go:embed palettes/*.gpl
var builtin embed.FS

type RGB [3]uint8

// Palette is an ordered list of colors read from a .gpl file
type Palette struct {
	Name   string
	Colors []RGB
}

// LoadGPL reads a palette file
func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadGPL(f, path)
}

// Builtin loads one of the palettes shipped with the binary
func Builtin(name string) (*Palette, error) {
	f, err := builtin.Open("palettes/" + name + ".gpl")
	if err != nil {
		return nil, fmt.Errorf("no builtin palette %q", name)
	}
	defer f.Close()
	return ReadGPL(f, name)
}

// ReadGPL parses a GIMP palette: a header, then one "R G B [name]" line per
// color. source is only used in errors.
func ReadGPL(r io.Reader, source string) (*Palette, error) {
	p := &Palette{}
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if name, ok := strings.CutPrefix(line, "Name:"); ok {
			p.Name = strings.TrimSpace(name)
			continue
		}
		if line == "" || line[0] < '0' || line[0] > '9' {
			continue // header, comment or blank
		}

		var c [3]int
		if _, err := fmt.Sscan(line, &c[0], &c[1], &c[2]); err != nil {
			continue
		}
		if c[0] > 255 || c[1] > 255 || c[2] > 255 {
			return nil, fmt.Errorf("%s:%d: channel out of range", source, n)
		}
		p.Colors = append(p.Colors, RGB{uint8(c[0]), uint8(c[1]), uint8(c[2])})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("no colors found in palette %s", source)
	}
	return p, nil
}

// Load tries a builtin palette by name, then a .gpl file path, falling back
// to plasma
func Load(nameOrPath string) *Palette {
	if p, err := Builtin(nameOrPath); err == nil {
		return p
	}
	if p, err := LoadGPL(nameOrPath); err == nil {
		return p
	}
	p, err := Builtin("plasma")
	if err != nil {
		panic(fmt.Sprintf("builtin palette missing: %v", err))
	}
	return p
}

// Lookup blends the two colors nearest to norm (0-1) along the palette
func (p *Palette) Lookup(norm float64) RGB {
	last := len(p.Colors) - 1
	pos := math.Max(0, math.Min(1, norm)) * float64(last)
	i := min(int(pos), last)
	if i == last {
		return p.Colors[last]
	}
	frac := pos - float64(i)

	var out RGB
	for ch := range out {
		a, b := float64(p.Colors[i][ch]), float64(p.Colors[i+1][ch])
		out[ch] = uint8(math.Round(a + (b-a)*frac))
	}
	return out
}
