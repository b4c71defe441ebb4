package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plexsphere/bridgeutil/internal/hal"
)

var memberType string

var memberCmd = &cobra.Command{
	Use:   "member",
	Short: "Attach or detach a single bridge member",
}

var memberAddCmd = &cobra.Command{
	Use:   "add <bridge> <iface>",
	Short: "Attach iface to a configured bridge",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMember(cmd, args, hal.CreateBridge)
	},
}

var memberDelCmd = &cobra.Command{
	Use:   "del <bridge> <iface>",
	Short: "Detach iface from a configured bridge",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMember(cmd, args, hal.DeleteBridge)
	},
}

func init() {
	memberCmd.PersistentFlags().StringVar(&memberType, "type", "other", "interface type (ethernet, moca, gre, wifi, vlan, other)")
	memberCmd.AddCommand(memberAddCmd)
	memberCmd.AddCommand(memberDelCmd)
	rootCmd.AddCommand(memberCmd)
}

func runMember(cmd *cobra.Command, args []string, op hal.BridgeOperation) error {
	typ, err := hal.ParseInterfaceType(memberType)
	if err != nil {
		return fmt.Errorf("bridgeutil member: %w", err)
	}

	s, err := loadSession("member")
	if err != nil {
		return err
	}
	defer s.Close()

	spec, err := s.cfg.Spec(args[0])
	if err != nil {
		return fmt.Errorf("bridgeutil member: %w", err)
	}
	env := s.cfg.Env()
	env.BridgeOpInProgress = true
	if err := s.backend.UpdateBridgeInfo(cmd.Context(), env, spec.Details, args[1], op, typ); err != nil {
		return fmt.Errorf("bridgeutil member: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", spec.Details.BridgeName, args[1], op)
	return nil
}
