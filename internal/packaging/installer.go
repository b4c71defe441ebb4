package packaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/plexsphere/bridgeutil/internal/fsutil"
)

// Installer installs and uninstalls the bridgeutil systemd service.
type Installer struct {
	cfg     InstallConfig
	systemd SystemdController
	root    RootChecker
	logger  *slog.Logger

	// executable resolves the running binary; tests replace it.
	executable func() (string, error)
}

// NewInstaller creates a new Installer with defaults applied.
func NewInstaller(cfg InstallConfig, systemd SystemdController, root RootChecker, logger *slog.Logger) *Installer {
	cfg.ApplyDefaults()
	return &Installer{
		cfg:        cfg,
		systemd:    systemd,
		root:       root,
		logger:     logger.With("component", "packaging"),
		executable: os.Executable,
	}
}

// Install copies the binary, writes a default config unless one exists,
// writes the unit file and reloads systemd. With cfg.Enable the service is
// also enabled at boot.
func (ins *Installer) Install(ctx context.Context) error {
	if err := ins.cfg.Validate(); err != nil {
		return err
	}
	if !ins.root.IsRoot() {
		return errors.New("packaging: install requires root privileges")
	}
	if !ins.systemd.IsAvailable(ctx) {
		return errors.New("packaging: systemd is not available")
	}

	for _, dir := range []string{ins.cfg.ConfigDir, ins.cfg.RunDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("packaging: create directory %s: %w", dir, err)
		}
	}

	if err := ins.copyBinary(); err != nil {
		return err
	}

	configPath := filepath.Join(ins.cfg.ConfigDir, "config.yaml")
	switch _, err := os.Stat(configPath); {
	case errors.Is(err, os.ErrNotExist):
		if err := fsutil.WriteFileAtomic(configPath, []byte(GenerateDefaultConfig(ins.cfg.RunDir)), 0o644); err != nil {
			return fmt.Errorf("packaging: write config: %w", err)
		}
		ins.logger.Info("default config written", "path", configPath)
	case err != nil:
		return fmt.Errorf("packaging: stat config: %w", err)
	default:
		ins.logger.Info("existing config preserved", "path", configPath)
	}

	if err := fsutil.WriteFileAtomic(ins.cfg.UnitFilePath, []byte(GenerateUnitFile(ins.cfg)), 0o644); err != nil {
		return fmt.Errorf("packaging: write unit file: %w", err)
	}
	ins.logger.Info("unit file written", "path", ins.cfg.UnitFilePath)

	if err := ins.systemd.DaemonReload(ctx); err != nil {
		return fmt.Errorf("packaging: daemon-reload: %w", err)
	}
	if ins.cfg.Enable {
		if err := ins.systemd.Enable(ctx, ins.cfg.ServiceName); err != nil {
			return fmt.Errorf("packaging: enable: %w", err)
		}
		ins.logger.Info("service enabled", "service", ins.cfg.ServiceName)
	}
	return nil
}

// Uninstall stops and removes the service. With purge the config directory
// is removed too. Uninstalling when nothing is installed is a no-op.
func (ins *Installer) Uninstall(ctx context.Context, purge bool) error {
	if !ins.root.IsRoot() {
		return errors.New("packaging: uninstall requires root privileges")
	}
	if _, err := os.Stat(ins.cfg.UnitFilePath); errors.Is(err, os.ErrNotExist) {
		ins.logger.Info("bridgeutil is not installed, nothing to do")
		return nil
	}

	// The service may already be stopped or disabled.
	if err := ins.systemd.Stop(ctx, ins.cfg.ServiceName); err != nil {
		ins.logger.Info("stop service", "error", err)
	}
	if err := ins.systemd.Disable(ctx, ins.cfg.ServiceName); err != nil {
		ins.logger.Info("disable service", "error", err)
	}

	if err := os.Remove(ins.cfg.UnitFilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("packaging: remove unit file: %w", err)
	}
	if err := ins.systemd.DaemonReload(ctx); err != nil {
		return fmt.Errorf("packaging: daemon-reload: %w", err)
	}
	if err := os.Remove(ins.cfg.BinaryPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("packaging: remove binary: %w", err)
	}
	ins.logger.Info("service removed", "service", ins.cfg.ServiceName)

	if purge {
		for _, dir := range []string{ins.cfg.ConfigDir, ins.cfg.RunDir} {
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("packaging: remove directory %s: %w", dir, err)
			}
			ins.logger.Info("directory removed", "path", dir)
		}
	}
	return nil
}

func (ins *Installer) copyBinary() error {
	srcPath, err := ins.executable()
	if err != nil {
		return fmt.Errorf("packaging: resolve executable path: %w", err)
	}
	srcPath, err = filepath.EvalSymlinks(srcPath)
	if err != nil {
		return fmt.Errorf("packaging: resolve symlinks: %w", err)
	}
	if srcPath == ins.cfg.BinaryPath {
		ins.logger.Info("binary already at install path", "path", srcPath)
		return nil
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("packaging: open source binary: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("packaging: read source binary: %w", err)
	}
	if err := fsutil.WriteFileAtomic(ins.cfg.BinaryPath, data, 0o755); err != nil {
		return fmt.Errorf("packaging: install binary: %w", err)
	}
	ins.logger.Info("binary installed", "src", srcPath, "dst", ins.cfg.BinaryPath)
	return nil
}
