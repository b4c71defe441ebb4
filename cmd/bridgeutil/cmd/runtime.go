package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/plexsphere/bridgeutil/internal/agent"
	"github.com/plexsphere/bridgeutil/internal/hal"
	"github.com/plexsphere/bridgeutil/internal/logging"
	"github.com/plexsphere/bridgeutil/internal/reconcile"
)

// backend is the HAL a command drives. The platform implementation also
// reports bridge membership for the sync pass and toggles link state.
type backend interface {
	hal.HAL
	reconcile.MemberLister
	SetLinkState(ctx context.Context, iface string, up bool) error
}

// openBackend builds the platform HAL. Tests replace it.
var openBackend = openPlatformBackend

// newLogger builds the logger described by cfg. Tests replace it.
var newLogger = func(cfg logging.Config) (*slog.Logger, io.Closer, error) {
	return logging.New(cfg)
}

// session bundles what a command needs after loading the configuration.
type session struct {
	cfg     *agent.AgentConfig
	logger  *slog.Logger
	backend backend
	closers []io.Closer
}

func (s *session) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// loadSession parses the configuration, applies CLI overrides and opens the
// logger and the HAL. The caller must Close the result.
func loadSession(op string) (*session, error) {
	cfg, err := agent.ParseConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("bridgeutil %s: %w", op, err)
	}
	if logLevel != "" {
		if _, err := logging.ParseLevel(logLevel); err != nil {
			return nil, fmt.Errorf("bridgeutil %s: %w", op, err)
		}
		cfg.Log.Level = logLevel
	}

	logger, logCloser, err := newLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("bridgeutil %s: %w", op, err)
	}
	s := &session{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	b, closer, err := openBackend(cfg, logger)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("bridgeutil %s: %w", op, err)
	}
	s.backend = b
	if closer != nil {
		s.closers = append(s.closers, closer)
	}
	return s, nil
}

// newReconciler builds a Reconciler over every configured bridge.
func (s *session) newReconciler() (*reconcile.Reconciler, error) {
	specs, err := s.cfg.Specs()
	if err != nil {
		return nil, err
	}
	return reconcile.NewReconciler(s.backend, s.backend, s.cfg.Env(), specs, s.cfg.Reconcile, s.logger), nil
}
