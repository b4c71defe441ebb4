package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plexsphere/bridgeutil/internal/hal"
)

var removeIfaceCmd = &cobra.Command{
	Use:   "remove-iface <list> <iface>",
	Short: "Remove an interface from a space-separated list",
	Long: "Print list with every whole-word occurrence of iface removed. The list is\n" +
		"printed unchanged when iface is not in it. No configuration is read.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), hal.RemoveIfaceFromList(args[0], args[1]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeIfaceCmd)
}
