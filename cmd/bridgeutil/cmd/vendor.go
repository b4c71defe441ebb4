package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var vendorIfacesCmd = &cobra.Command{
	Use:   "vendor-ifaces",
	Short: "List vendor interfaces available for bridges",
	Args:  cobra.NoArgs,
	RunE:  runVendorIfaces,
}

func init() {
	rootCmd.AddCommand(vendorIfacesCmd)
}

func runVendorIfaces(cmd *cobra.Command, _ []string) error {
	s, err := loadSession("vendor-ifaces")
	if err != nil {
		return err
	}
	defer s.Close()

	list, err := s.backend.GetVendorIfaces(cmd.Context(), s.cfg.Env())
	if err != nil {
		return fmt.Errorf("bridgeutil vendor-ifaces: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), list.String())
	return nil
}
