package sequencer

import (
	"time"

	"go-turing/config"
	"go-turing/hwio"
	"go-turing/panel"
	"go-turing/theme"
	"go-turing/turing"
)

// Options configures a Manager
type Options struct {
	Seed        int64 // 0 seeds from the clock
	ResetPolicy turing.ResetPolicy

	// Coin toss thresholds, 0 keeps the default
	ThreshLow  float64
	ThreshHigh float64
	ThreshCV   float64

	Bias        float64
	Octaves     int
	ServiceHz   int
	TriggerMs   int
	InternalBPM int
	Timing      panel.Timing
	Surface     config.SurfaceConfig
	Theme       *theme.Theme
}

// OptionsFromConfig builds manager options from the loaded config
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Seed:        cfg.Engine.Seed,
		ResetPolicy: turing.ParseResetPolicy(cfg.Engine.ResetPolicy),
		ThreshLow:   cfg.Engine.ThreshLow,
		ThreshHigh:  cfg.Engine.ThreshHigh,
		ThreshCV:    cfg.Engine.ThreshCV,
		Bias:        cfg.Engine.Bias,
		Octaves:     cfg.Engine.Octaves,
		ServiceHz:   cfg.Timing.ServiceHz,
		TriggerMs:   cfg.Timing.TriggerMs,
		InternalBPM: cfg.Timing.InternalBPM,
		Timing: panel.Timing{
			HoldMs:        cfg.Timing.HoldMs,
			DoubleClickMs: cfg.Timing.DoubleClickMs,
		},
		Surface: cfg.Surface,
		Theme:   theme.New(theme.Load(cfg.UI.Palette)),
	}
}

func (o *Options) applyDefaults() {
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	if o.ServiceHz <= 0 {
		o.ServiceHz = 1000
	}
	if o.TriggerMs <= 0 {
		o.TriggerMs = 10
	}
	if o.Timing == (panel.Timing{}) {
		o.Timing = panel.DefaultTiming
	}
	o.Octaves = hwio.ClampOctaves(o.Octaves)
	if o.Theme == nil {
		o.Theme = theme.New(theme.Load("plasma"))
	}
}
