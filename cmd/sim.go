package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"go-turing/hwio"
	"go-turing/panel"
	"go-turing/sequencer"
)

var (
	simSteps int
	simTicks int
	simBias  float64
	simReset int
)

func init() {
	rootCmd.AddCommand(simCmd)
	simCmd.Flags().IntVarP(&simSteps, "steps", "n", 32, "clock pulses to send")
	simCmd.Flags().IntVar(&simTicks, "ticks", 125, "service ticks between pulses")
	simCmd.Flags().Float64Var(&simBias, "bias", -1, "probability knob 0-1, negative keeps the config value")
	simCmd.Flags().IntVar(&simReset, "reset-every", 0, "send a reset every n steps")
}

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Clock the sequencer headless and print every step",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := managerOptions()
		opts.InternalBPM = 0
		if simBias >= 0 {
			opts.Bias = simBias
		}
		simulate(os.Stdout, sequencer.NewManager(opts), simSteps, simTicks, simReset)
		return nil
	},
}

func simulate(w io.Writer, mgr *sequencer.Manager, steps, ticks, resetEvery int) {
	ticks = max(ticks, 2)
	mgr.AddRenderer(sequencer.RenderFunc(func(o sequencer.Outputs) error {
		if o.Clocked {
			fmt.Fprintln(w, formatStep(o))
		}
		return nil
	}))

	for i := 1; i <= steps; i++ {
		mgr.Pins().Pulse(panel.ClockGate)
		mgr.Advance(ticks)
		if resetEvery > 0 && i%resetEvery == 0 {
			mgr.Pins().Pulse(panel.ResetGate)
			mgr.Advance(2)
		}
	}
}

func formatStep(o sequencer.Outputs) string {
	var reg strings.Builder
	for i := 0; i < o.Length; i++ {
		if o.Register&(1<<i) != 0 {
			reg.WriteByte('1')
		} else {
			reg.WriteByte('0')
		}
	}
	var cvs []string
	for _, semis := range o.CV {
		cvs = append(cvs, fmt.Sprintf("%+.2f", hwio.Volts(semis)))
	}
	return fmt.Sprintf("%02d %-16s trig=%08b cv=%s drunk=%d bank=%d",
		o.Position()+1, reg.String(), o.Triggers, strings.Join(cvs, ","), o.Drunk, o.Bank+1)
}
