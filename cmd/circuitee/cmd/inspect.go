package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <blob|url>",
	Short: "Print elements, circuits and switch wiring of a design",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print the decoded design as JSON")
}

func runInspect(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	design := eng.Design()

	if inspectJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(design)
	}

	fmt.Fprintf(out, "Mode: %s\n", design.Mode)
	if design.FloorPlan != "" {
		fmt.Fprintf(out, "Floor plan: %d bytes\n", len(design.FloorPlan))
	}

	fmt.Fprintf(out, "\nElements (%d):\n", len(design.Elements))
	for _, el := range design.Elements {
		line := fmt.Sprintf("  %-5s %-12s %-13s (%.1f, %.1f)", el.Label, el.ID, el.Kind, el.X, el.Y)
		if el.Name != "" {
			line += " " + el.Name
		}
		fmt.Fprintln(out, line)
	}

	g := eng.Graph()
	fmt.Fprintf(out, "\nCircuits (%d):\n", len(g.CircuitIDs()))
	for _, id := range g.CircuitIDs() {
		var labels []string
		for _, m := range g.Members(id) {
			labels = append(labels, m.Label)
		}
		fmt.Fprintf(out, "  %-4s %s  lights=[%s] switches=[%s]\n",
			id, g.CircuitColor(id),
			strings.Join(labels, " "),
			strings.Join(switchLabels(eng, g.CircuitSwitches(id)), " "))
	}

	fmt.Fprintf(out, "\nConnections (%d)\n", len(design.Connections))
	return nil
}
