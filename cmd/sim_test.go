package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-turing/sequencer"
	"go-turing/turing"
)

func TestSimulatePrintsEveryStep(t *testing.T) {
	var buf bytes.Buffer
	mgr := sequencer.NewManager(sequencer.Options{Seed: 7, Bias: 1})
	simulate(&buf, mgr, 10, 20, 0)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 10)
	assert.True(t, strings.HasPrefix(lines[0], "02 "))
	assert.True(t, strings.HasPrefix(lines[7], "01 "), "length 8 wraps")
	assert.Equal(t, lines[0][3:19], lines[8][3:19], "locked loop repeats")
}

func TestSimulateReset(t *testing.T) {
	var buf bytes.Buffer
	mgr := sequencer.NewManager(sequencer.Options{Seed: 7, Bias: 1, ResetPolicy: turing.ResetOnClock})
	simulate(&buf, mgr, 6, 20, 3)

	var steps []string
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		steps = append(steps, l[:2])
	}
	assert.Equal(t, []string{"02", "03", "04", "01", "02", "03"}, steps)
}

func TestFormatPattern(t *testing.T) {
	p := turing.Pattern{Reg: 0x0005, LengthIdx: 2} // 4 steps
	assert.Equal(t, "1.1.            ", formatPattern(p))
}

func TestFormatFaders(t *testing.T) {
	f := [8]float64{0, 1, 0.5, 2, -1, 1.0 / 9, 0.95, 0.04}
	assert.Equal(t, "09590190", formatFaders(f))
}
