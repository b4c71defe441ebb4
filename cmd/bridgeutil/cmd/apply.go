package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plexsphere/bridgeutil/internal/reconcile"
)

var applyCmd = &cobra.Command{
	Use:   "apply [bridge...]",
	Short: "Create or update bridges once",
	Long: "Without arguments, run one sync pass over every configured bridge and\n" +
		"detach stale members. With bridge names, create or update only those bridges.",
	RunE: runApply,
}

var removeCmd = &cobra.Command{
	Use:   "remove <bridge>...",
	Short: "Delete configured bridges",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRemove,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(removeCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	s, err := loadSession("apply")
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.newReconciler()
	if err != nil {
		return fmt.Errorf("bridgeutil apply: %w", err)
	}

	if len(args) == 0 {
		if err := rec.Sync(cmd.Context()); err != nil {
			return fmt.Errorf("bridgeutil apply: %w", err)
		}
		st, _ := rec.Status()
		for _, b := range st.Bridges {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\tapplied\tdetached=%d\n", b.Bridge, len(b.Detached))
		}
		return nil
	}

	return forEachSpec(args, s, func(spec reconcile.BridgeSpec) error {
		if err := rec.Apply(cmd.Context(), spec); err != nil {
			return fmt.Errorf("bridgeutil apply: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\tapplied\n", spec.Details.BridgeName)
		return nil
	})
}

func runRemove(cmd *cobra.Command, args []string) error {
	s, err := loadSession("remove")
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.newReconciler()
	if err != nil {
		return fmt.Errorf("bridgeutil remove: %w", err)
	}
	return forEachSpec(args, s, func(spec reconcile.BridgeSpec) error {
		if err := rec.Remove(cmd.Context(), spec); err != nil {
			return fmt.Errorf("bridgeutil remove: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\tremoved\n", spec.Details.BridgeName)
		return nil
	})
}

// forEachSpec resolves every name before running fn, so an unknown bridge
// fails the command without touching the others.
func forEachSpec(names []string, s *session, fn func(reconcile.BridgeSpec) error) error {
	specs := make([]reconcile.BridgeSpec, 0, len(names))
	for _, name := range names {
		spec, err := s.cfg.Spec(name)
		if err != nil {
			return fmt.Errorf("bridgeutil: %w", err)
		}
		specs = append(specs, spec)
	}
	for _, spec := range specs {
		if err := fn(spec); err != nil {
			return err
		}
	}
	return nil
}
