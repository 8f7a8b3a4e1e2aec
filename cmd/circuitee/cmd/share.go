package cmd

import (
	"fmt"

	"circuitee/internal/designer/share"

	"github.com/spf13/cobra"
)

var shareBase string

var shareCmd = &cobra.Command{
	Use:   "share <blob>",
	Short: "Print a test-mode share link for a design blob",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := share.Deserialize(args[0]); err != nil {
			return err
		}
		link, err := share.ShareURL(shareBase, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), link)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shareCmd)
	shareCmd.Flags().StringVar(&shareBase, "base", "http://localhost:3000/", "base URL of the designer")
}
