package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"circuitee/internal/designer/engine"
	"circuitee/internal/designer/parser"
	"circuitee/internal/designer/share"

	"github.com/spf13/cobra"
)

var (
	importRef1 string
	importRef2 string
	importJSON bool
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Place a lighting CSV export and print the share blob",
	Long: `Parse a CSV export (Type,X1,Y1,Z1,X2,Y2,Z2,Name), map it onto canvas
coordinates using the two reference points, and print the resulting design blob.

Examples:
  circuitee import lights.csv --ref1 100,100 --ref2 300,100
  circuitee import lights.csv --ref1 0,0 --ref2 800,0 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importRef1, "ref1", "", "canvas position of reference1 as x,y")
	importCmd.Flags().StringVar(&importRef2, "ref2", "", "canvas position of reference2 as x,y")
	importCmd.Flags().BoolVar(&importJSON, "json", false, "print the import result as JSON")
	_ = importCmd.MarkFlagRequired("ref1")
	_ = importCmd.MarkFlagRequired("ref2")
}

func runImport(cmd *cobra.Command, args []string) error {
	dst1, err := parsePoint(importRef1)
	if err != nil {
		return err
	}
	dst2, err := parsePoint(importRef2)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	export, err := parser.ParseCSV(f)
	if err != nil {
		return err
	}
	for _, w := range export.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}

	eng := engine.New(engine.Options{})
	if _, err := eng.Dispatch(engine.BeginImport{Export: export}); err != nil {
		return err
	}
	if _, err := eng.Dispatch(engine.CanvasClick{At: dst1}); err != nil {
		return err
	}
	ev, err := eng.Dispatch(engine.CanvasClick{At: dst2})
	if err != nil {
		return err
	}

	blob, err := share.Serialize(eng.Design())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if importJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Import any    `json:"import"`
			Blob   string `json:"blob"`
		}{ev.Import, blob})
	}

	res := ev.Import
	fmt.Fprintf(out, "Scale:    %.4f px/mm\n", res.Transform.Scale)
	fmt.Fprintf(out, "Rotation: %.2f deg\n", res.Transform.RotationDegrees())
	fmt.Fprintf(out, "Placed:   %d point, %d linear, %d switch\n", res.Points, res.Linears, res.Switches)
	for _, s := range res.Skipped {
		fmt.Fprintf(out, "Skipped:  line %d (%s %s): %s\n", s.Line, s.Type, s.Name, s.Reason)
	}
	fmt.Fprintf(out, "\n%s\n", blob)
	return nil
}
