package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-turing/config"
	"go-turing/debug"
	"go-turing/sequencer"
	"go-turing/turing"
)

var (
	configPath string
	debugLog   bool
	seed       int64
	policy     string
	bpm        int

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "turing",
	Short: "Random looping step sequencer",
	Long: `A shift register sequencer: an 8 to 16 step pattern loops and slowly
mutates, with eight banks to save and recall patterns on the downbeat.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.LoadFile(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if debugLog {
			if err := debug.Enable(); err != nil {
				return fmt.Errorf("enable debug log: %w", err)
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		debug.Disable()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default ~/.config/go-turing/config.json)")
	flags.BoolVar(&debugLog, "debug", false, "write a debug log to ~/.config/go-turing/debug.log")
	flags.Int64Var(&seed, "seed", 0, "random seed, 0 for the config value or the clock")
	flags.StringVar(&policy, "policy", "", `reset policy, "clock" or "immediate"`)
	flags.IntVar(&bpm, "bpm", 0, "internal clock tempo, 0 for the config value")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

// managerOptions applies command line overrides to the config
func managerOptions() sequencer.Options {
	opts := sequencer.OptionsFromConfig(cfg)
	if seed != 0 {
		opts.Seed = seed
	}
	if policy != "" {
		opts.ResetPolicy = turing.ParseResetPolicy(policy)
	}
	if bpm > 0 {
		opts.InternalBPM = bpm
	}
	return opts
}
