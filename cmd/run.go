package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"go-turing/debug"
	"go-turing/hwio"
	"go-turing/midi"
	"go-turing/panel"
	"go-turing/sequencer"
	"go-turing/store"
	"go-turing/tui"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sequencer with the terminal panel",
	Long: `Runs the sequencer. Launchpads and knob boxes are picked up as they are
plugged in; the MIDI clock input, MIDI output and serial board come from the
config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func run(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var clocks []panel.PinReader
	if name := cfg.Clock.PortName; name != "" {
		in, err := midi.FindInPort(name)
		if err != nil {
			return err
		}
		clk := midi.NewClockIn(in.String(), cfg.Clock.Divider)
		if err := clk.Listen(in); err != nil {
			return err
		}
		defer clk.Close()
		clocks = append(clocks, clk)
	}

	mgr := sequencer.NewManager(managerOptions(), clocks...)

	if name := cfg.Output.PortName; name != "" {
		out, err := midi.OpenOut(name)
		if err != nil {
			return err
		}
		r := sequencer.NewMIDIRenderer(out, cfg.Output)
		mgr.AddRenderer(r)
		defer r.Silence()
	}

	if dev := cfg.Serial.Device; dev != "" {
		sink, err := hwio.OpenSerial(dev, cfg.Serial.Baud)
		if err != nil {
			return err
		}
		defer sink.Close()
		mgr.AddRenderer(sequencer.NewSerialRenderer(sink))
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	if cfg.Store.Autosave {
		switch snap, err := st.Latest(); {
		case err == nil:
			mgr.Restore(*snap)
		case !errors.Is(err, store.ErrNoSaves):
			debug.Warn("store", "could not restore banks: %v", err)
		}

		saver := store.NewAutosaver(st, time.Duration(cfg.Store.DelayMs)*time.Millisecond)
		mgr.SetSaver(saver)
		defer func() {
			if err := saver.Flush(); err != nil {
				fmt.Printf("autosave failed: %v\n", err)
			}
		}()
	}

	var surfaces []string
	if cfg.Surface.PortName != "" {
		surfaces = append(surfaces, cfg.Surface.PortName)
	}
	deviceMgr := midi.NewDeviceManager(cfg.AllowController, surfaces...)
	go deviceMgr.Run(ctx)
	go mgr.Run(ctx)

	m := tui.NewModel(mgr, deviceMgr)
	m.Store = st
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func openStore() (*store.Store, error) {
	dir := cfg.Store.Dir
	if dir == "" {
		var err error
		if dir, err = store.DefaultDir(); err != nil {
			return nil, err
		}
	}
	return store.New(dir), nil
}
