package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-turing/config"
	"go-turing/hwio"
	"go-turing/midi"
)

var (
	addPort    string
	ignorePort string
)

func init() {
	rootCmd.AddCommand(portsCmd)
	portsCmd.Flags().StringVar(&addPort, "add", "", "remember a controller port and connect to it automatically")
	portsCmd.Flags().StringVar(&ignorePort, "ignore", "", "remember a controller port and never connect to it")
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI and serial ports",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch {
		case addPort != "":
			return rememberController(addPort, true)
		case ignorePort != "":
			return rememberController(ignorePort, false)
		}
		listPorts()
		return nil
	},
}

func rememberController(name string, auto bool) error {
	cfg.AddController(config.ControllerConfig{PortName: name, AutoConnect: auto})
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Printf("saved %s (autoconnect=%v)\n", name, auto)
	return nil
}

func listPorts() {
	fmt.Println("=== MIDI Ports ===")
	ports, err := midi.ListPorts()
	if err != nil {
		fmt.Printf("  %v\n", err)
		fmt.Println("  Fix: sudo killall coreaudiod midiserver")
	}
	for _, p := range ports {
		dir := "out"
		if p.Input {
			dir = "in "
		}
		tag := ""
		if p.Launchpad {
			tag = "  [launchpad]"
		}
		if c := cfg.FindController(p.Name); c != nil && !c.AutoConnect {
			tag += "  [ignored]"
		}
		fmt.Printf("  %s  %s%s\n", dir, p.Name, tag)
	}

	fmt.Println("\n=== Serial Ports ===")
	names, err := hwio.PortNames()
	if err != nil {
		fmt.Printf("  error: %v\n", err)
		return
	}
	if len(names) == 0 {
		fmt.Println("  (none)")
	}
	for _, n := range names {
		fmt.Printf("  %s\n", n)
	}
}
