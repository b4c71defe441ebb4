package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Keep the configured bridges in sync",
	Long: "Run a sync pass over every configured bridge immediately and then at the\n" +
		"configured interval until terminated. SIGHUP requests an immediate pass.",
	Args: cobra.NoArgs,
	RunE: runUp,
}

func init() {
	rootCmd.AddCommand(upCmd)
}

func runUp(cmd *cobra.Command, _ []string) error {
	s, err := loadSession("up")
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.newReconciler()
	if err != nil {
		return fmt.Errorf("bridgeutil up: %w", err)
	}

	s.logger.Info("starting bridgeutil",
		"version", buildVersion,
		"bridges", len(s.cfg.Bridges),
		"device_mode", s.cfg.Device.Mode,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				s.logger.Info("SIGHUP received, triggering sync")
				rec.TriggerSync()
			}
		}
	}()

	if err := rec.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bridgeutil up: %w", err)
	}
	s.logger.Info("bridgeutil stopped")
	return nil
}
