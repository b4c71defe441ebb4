package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/plexsphere/bridgeutil/internal/logging"
	"github.com/plexsphere/bridgeutil/internal/packaging"
	"github.com/plexsphere/bridgeutil/internal/script"
)

var (
	installEnable  bool
	uninstallPurge bool
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install bridgeutil as a systemd service",
	Args:  cobra.NoArgs,
	RunE:  runInstall,
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the bridgeutil systemd service",
	Args:  cobra.NoArgs,
	RunE:  runUninstall,
}

func init() {
	installCmd.Flags().BoolVar(&installEnable, "enable", false, "enable the service at boot")
	uninstallCmd.Flags().BoolVar(&uninstallPurge, "purge", false, "also remove configuration and runtime directories")
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
}

// newInstaller logs to stderr only; the configured log file may not exist
// before installation.
func newInstaller() (*packaging.Installer, io.Closer, error) {
	logger, closer, err := newLogger(logging.Config{Level: logLevel, File: "-"})
	if err != nil {
		return nil, nil, err
	}
	runner := script.NewExecRunner(script.Config{}, logger)
	cfg := packaging.InstallConfig{Enable: installEnable}
	return packaging.NewInstaller(cfg, packaging.NewSystemdController(runner), packaging.NewRootChecker(), logger), closer, nil
}

func runInstall(cmd *cobra.Command, _ []string) error {
	ins, closer, err := newInstaller()
	if err != nil {
		return fmt.Errorf("bridgeutil install: %w", err)
	}
	defer closer.Close()
	if err := ins.Install(cmd.Context()); err != nil {
		return fmt.Errorf("bridgeutil install: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "bridgeutil installed successfully")
	return nil
}

func runUninstall(cmd *cobra.Command, _ []string) error {
	ins, closer, err := newInstaller()
	if err != nil {
		return fmt.Errorf("bridgeutil uninstall: %w", err)
	}
	defer closer.Close()
	if err := ins.Uninstall(cmd.Context(), uninstallPurge); err != nil {
		return fmt.Errorf("bridgeutil uninstall: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "bridgeutil uninstalled")
	return nil
}
