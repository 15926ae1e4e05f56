// Package diag gathers post-run diagnostics: external commands whose output
// is shown to the operator verbatim once the maintenance run has ended.
package diag

import (
	"context"
	"fmt"
	"strings"

	"github.com/upkeep-sh/upkeep/internal/log"
	"github.com/upkeep-sh/upkeep/internal/shell"
)

// Collector knows how to gather human readable post-run diagnostics.
type Collector interface {
	Collect(ctx context.Context) (string, error)
}

// ServiceConfig is the configuration for the diagnostics service.
type ServiceConfig struct {
	Exec     shell.Executor
	Commands []string
	Logger   log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Exec == nil {
		return fmt.Errorf("executor is required")
	}
	if len(c.Commands) == 0 {
		return fmt.Errorf("at least one diagnostic command is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "diag.Service"})
	return nil
}

// Service runs the configured diagnostic commands and concatenates their
// output. Diagnostics are advisory, a failing command is reported inline
// instead of failing the collection.
type Service struct {
	exec     shell.Executor
	commands []string
	logger   log.Logger
}

// NewService creates a new diagnostics service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		exec:     cfg.Exec,
		commands: cfg.Commands,
		logger:   cfg.Logger,
	}, nil
}

// Collect runs every diagnostic command and returns their combined output.
func (s *Service) Collect(ctx context.Context) (string, error) {
	var b strings.Builder
	for _, command := range s.commands {
		fmt.Fprintf(&b, "$ %s\n", command)

		out, exitCode, err := s.exec.Capture(ctx, command)
		if err != nil {
			s.logger.Warningf("Diagnostic command %q could not run: %s", command, err)
			fmt.Fprintf(&b, "(could not run: %s)\n\n", err)
			continue
		}

		b.WriteString(out)
		if !strings.HasSuffix(out, "\n") {
			b.WriteString("\n")
		}
		if exitCode != 0 {
			fmt.Fprintf(&b, "(exited with code %d)\n", exitCode)
		}
		b.WriteString("\n")
	}

	return strings.TrimSuffix(b.String(), "\n"), nil
}
