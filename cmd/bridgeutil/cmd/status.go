package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plexsphere/bridgeutil/internal/agent"
	"github.com/plexsphere/bridgeutil/internal/reconcile"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the outcome of the last sync pass",
	Long:  "Read the status file written by the sync loop and display it.",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := agent.ParseConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("bridgeutil status: %w", err)
	}
	if cfg.Reconcile.StatusPath == "" {
		return errors.New("bridgeutil status: reconcile status path is not configured")
	}

	data, err := os.ReadFile(cfg.Reconcile.StatusPath)
	if err != nil {
		return fmt.Errorf("bridgeutil status: %w", err)
	}
	var st reconcile.Status
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("bridgeutil status: parse %s: %w", cfg.Reconcile.StatusPath, err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Last sync:    %s (%s)\n", st.Timestamp.Format("2006-01-02 15:04:05"), st.Duration)
	fmt.Fprintf(w, "Sync members: %d\n", st.SyncMembers)
	for _, b := range st.Bridges {
		state := "ok"
		if b.Error != "" {
			state = "error: " + b.Error
		}
		fmt.Fprintf(w, "\n%s (%s): %s\n", b.Bridge, b.Instance, state)
		if len(b.Detached) > 0 {
			fmt.Fprintf(w, "  detached: %s\n", strings.Join(b.Detached, " "))
		}
		if len(b.Missing) > 0 {
			fmt.Fprintf(w, "  missing:  %s\n", strings.Join(b.Missing, " "))
		}
	}
	return nil
}
