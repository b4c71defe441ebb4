package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plexsphere/bridgeutil/internal/hal"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Query interface presence",
	Long:  "Query interface presence. Prints 0 when the interface is present and -1 otherwise.",
}

var checkExistsCmd = &cobra.Command{
	Use:   "exists <iface>",
	Short: "Report whether an interface exists",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckExists,
}

var checkMemberCmd = &cobra.Command{
	Use:   "member <iface> <bridge>",
	Short: "Report whether an interface is a member of a bridge",
	Args:  cobra.ExactArgs(2),
	RunE:  runCheckMember,
}

func init() {
	checkCmd.AddCommand(checkExistsCmd)
	checkCmd.AddCommand(checkMemberCmd)
	rootCmd.AddCommand(checkCmd)
}

func runCheckExists(cmd *cobra.Command, args []string) error {
	s, err := loadSession("check")
	if err != nil {
		return err
	}
	defer s.Close()

	ok, err := s.backend.CheckIfExists(cmd.Context(), args[0])
	fmt.Fprintln(cmd.OutOrStdout(), hal.ExistStatus(ok, err))
	if err != nil {
		return fmt.Errorf("bridgeutil check: %w", err)
	}
	return nil
}

func runCheckMember(cmd *cobra.Command, args []string) error {
	s, err := loadSession("check")
	if err != nil {
		return err
	}
	defer s.Close()

	ok, err := s.backend.CheckIfExistsInBridge(cmd.Context(), args[0], args[1])
	fmt.Fprintln(cmd.OutOrStdout(), hal.ExistStatus(ok, err))
	if err != nil {
		return fmt.Errorf("bridgeutil check: %w", err)
	}
	return nil
}
