package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"go-turing/turing"
)

func init() {
	rootCmd.AddCommand(banksCmd)
	banksCmd.AddCommand(banksShowCmd, banksRenameCmd, banksRmCmd)
}

var banksCmd = &cobra.Command{
	Use:   "banks",
	Short: "List saved bank snapshots, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		saves, err := st.List()
		if err != nil {
			return err
		}
		if len(saves) == 0 {
			fmt.Println("no saves in", st.Dir())
		}
		for _, s := range saves {
			fmt.Printf("  %s  %-20s %s\n", s.Timestamp.Format("2006-01-02 15:04:05"), s.Name, s.Filename)
		}
		return nil
	},
}

var banksShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print the patterns in a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		snap, err := st.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s  saved %s  bank %d\n", snap.ID, snap.Saved.Format("2006-01-02 15:04:05"), snap.Bank+1)
		for i, p := range snap.Banks {
			fmt.Printf("  %d  %s  len %2d", i+1, formatPattern(p), p.Length())
			if i < len(snap.Faders) {
				fmt.Printf("  faders %s", formatFaders(snap.Faders[i]))
			}
			fmt.Println()
		}
		return nil
	},
}

var banksRenameCmd = &cobra.Command{
	Use:   "rename <file> <name>",
	Short: "Rename a snapshot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		name, err := st.Rename(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(name)
		return nil
	},
}

var banksRmCmd = &cobra.Command{
	Use:   "rm <file>",
	Short: "Delete a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		return st.Delete(args[0])
	},
}

func formatPattern(p turing.Pattern) string {
	out := make([]byte, 0, turing.RegisterBits)
	for i := 0; i < p.Length(); i++ {
		if p.Reg&(1<<i) != 0 {
			out = append(out, '1')
		} else {
			out = append(out, '.')
		}
	}
	return fmt.Sprintf("%-16s", out)
}

// formatFaders prints fader positions as 0-9 digits
func formatFaders(f [8]float64) string {
	out := make([]byte, len(f))
	for i, v := range f {
		out[i] = '0' + byte(math.Round(min(max(v, 0), 1)*9))
	}
	return string(out)
}
