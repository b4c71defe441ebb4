package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Change the administrative state of an interface",
}

var linkUpCmd = &cobra.Command{
	Use:   "up <iface>",
	Short: "Bring iface up",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLink(cmd, args[0], true)
	},
}

var linkDownCmd = &cobra.Command{
	Use:   "down <iface>",
	Short: "Bring iface down",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLink(cmd, args[0], false)
	},
}

func init() {
	linkCmd.AddCommand(linkUpCmd)
	linkCmd.AddCommand(linkDownCmd)
	rootCmd.AddCommand(linkCmd)
}

func runLink(cmd *cobra.Command, iface string, up bool) error {
	s, err := loadSession("link")
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.backend.SetLinkState(cmd.Context(), iface, up); err != nil {
		return fmt.Errorf("bridgeutil link: %w", err)
	}
	state := "down"
	if up {
		state = "up"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", iface, state)
	return nil
}
