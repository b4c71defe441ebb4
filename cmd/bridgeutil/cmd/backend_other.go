//go:build !linux

package cmd

import (
	"errors"
	"io"
	"log/slog"

	"github.com/plexsphere/bridgeutil/internal/agent"
)

func openPlatformBackend(*agent.AgentConfig, *slog.Logger) (backend, io.Closer, error) {
	return nil, nil, errors.New("bridge management requires Linux")
}
