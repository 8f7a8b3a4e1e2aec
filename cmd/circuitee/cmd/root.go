package cmd

import (
	"fmt"
	"os"

	"circuitee/internal/common/middleware"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose  bool
	storeDir string
)

var rootCmd = &cobra.Command{
	Use:   "circuitee",
	Short: "Lighting circuit designer toolkit",
	Long: `Offline tools for circuitee designs: import a lighting CSV export,
inspect and simulate share blobs, and build share links.

Examples:
  circuitee import lights.csv --ref1 100,100 --ref2 300,100   # Place an export
  circuitee inspect <blob>                                    # List elements and circuits
  circuitee simulate <blob> --toggle SW1 --toggle SW2         # Flip switches
  circuitee share <blob> --base https://example.com/          # Print a share link`,
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			middleware.SetLogLevel("debug")
		} else {
			middleware.SetLogLevel("warn")
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store-dir", "", "directory of the floor plan key-value store (optional)")
}
