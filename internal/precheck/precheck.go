// Package precheck decides whether a conditional task has any work to do
// before its command is executed.
package precheck

import (
	"context"
	"fmt"
	"strings"

	"github.com/upkeep-sh/upkeep/internal/log"
	"github.com/upkeep-sh/upkeep/internal/model"
	"github.com/upkeep-sh/upkeep/internal/shell"
)

// ServiceConfig is the configuration for the precheck service.
type ServiceConfig struct {
	Exec   shell.Executor
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Exec == nil {
		return fmt.Errorf("executor is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "precheck.Service"})
	return nil
}

// Service runs a task's non-destructive check command to decide whether the
// task's real command needs to run at all.
type Service struct {
	exec   shell.Executor
	logger log.Logger
}

// NewService creates a new precheck service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		exec:   cfg.Exec,
		logger: cfg.Logger,
	}, nil
}

// HasWork reports whether the task has anything to do. Work exists when the
// check command exits zero and prints anything besides whitespace. The check
// output is advisory and never reaches the run log.
func (s *Service) HasWork(ctx context.Context, task model.Task) (bool, error) {
	if task.Check == "" {
		return true, nil
	}

	out, exitCode, err := s.exec.Capture(ctx, task.Check)
	if err != nil {
		return false, fmt.Errorf("could not run check for task %q: %w", task.Key, err)
	}
	if exitCode != 0 {
		s.logger.Debugf("Check for task %q exited with code %d, assuming no work", task.Key, exitCode)
		return false, nil
	}

	return strings.TrimSpace(out) != "", nil
}
