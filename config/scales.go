package config

import "strings"

// Scales are eight degrees above the root in semitones, one per random walk
// position
var Scales = map[string][8]uint8{
	"major":             {0, 2, 4, 5, 7, 9, 11, 12},
	"minor":             {0, 2, 3, 5, 7, 8, 10, 12},
	"pentatonic":        {0, 2, 4, 7, 9, 12, 14, 16},
	"dorian":            {0, 2, 3, 5, 7, 9, 10, 12},
	"phrygian":          {0, 1, 3, 5, 7, 8, 10, 12},
	"lydian":            {0, 2, 4, 6, 7, 9, 11, 12},
	"mixolydian":        {0, 2, 4, 5, 7, 9, 10, 12},
	"locrian":           {0, 1, 3, 5, 6, 8, 10, 12},
	"harmonic-minor":    {0, 2, 3, 5, 7, 8, 11, 12},
	"melodic-minor":     {0, 2, 3, 5, 7, 9, 11, 12},
	"blues":             {0, 3, 5, 6, 7, 10, 12, 15},
	"whole-tone":        {0, 2, 4, 6, 8, 10, 12, 14},
	"dim-half-whole":    {0, 1, 3, 4, 6, 7, 9, 10},
	"dim-whole-half":    {0, 2, 3, 5, 6, 8, 9, 11},
	"hungarian-minor":   {0, 2, 3, 6, 7, 8, 11, 12},
	"double-harmonic":   {0, 1, 4, 5, 7, 8, 11, 12},
	"phrygian-dominant": {0, 1, 4, 5, 7, 8, 10, 12},
	"hirajoshi":         {0, 2, 3, 7, 8, 12, 14, 15},
	"in-sen":            {0, 1, 5, 7, 10, 12, 13, 17},
	"yo":                {0, 2, 4, 7, 9, 12, 14, 16},
}

// Degrees returns the named scale when ScaleName is set and known, and the
// explicit Scale otherwise
func (o OutputConfig) Degrees() [8]uint8 {
	if s, ok := Scales[strings.ToLower(o.ScaleName)]; ok {
		return s
	}
	return o.Scale
}
