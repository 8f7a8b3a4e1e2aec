package cmd

import (
	"fmt"

	"circuitee/internal/designer/engine"
	"circuitee/internal/designer/models"

	"github.com/spf13/cobra"
)

var simulateToggles []string

var simulateCmd = &cobra.Command{
	Use:   "simulate <blob|url>",
	Short: "Toggle switches by label and print light states",
	Long: `Load a design in test mode, toggle the given switches in order and print
which lights are on after each toggle. Circuits with several switches follow
multi-way wiring: every toggle flips the circuit.

Examples:
  circuitee simulate <blob> --toggle SW1
  circuitee simulate <blob> --toggle SW1 --toggle SW2 --toggle SW1`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().StringArrayVarP(&simulateToggles, "toggle", "t", nil, "switch label to toggle (repeatable)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine(args[0])
	if err != nil {
		return err
	}
	if _, err := eng.Dispatch(engine.SetMode{Mode: models.ModeTest}); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, label := range simulateToggles {
		sw, ok := eng.Graph().Store().FindByLabel(label)
		if !ok {
			return fmt.Errorf("no element labelled %s", label)
		}
		ev, err := eng.Dispatch(engine.ToggleSwitch{ID: sw.ID})
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%s:\n", label)
		for _, o := range ev.Outcomes {
			state := "off"
			if o.On {
				state = "on"
			}
			fmt.Fprintf(out, "  circuit %-4s active=%d -> %s\n", o.CircuitID, o.ActiveCount, state)
		}
	}

	fmt.Fprintln(out, "Lights on:")
	for _, el := range eng.Graph().Store().Lights() {
		if el.On {
			fmt.Fprintf(out, "  %s\n", el.Label)
		}
	}
	return nil
}
