// Package runner executes the fixed maintenance sequence, one task at a
// time, keeping the shared status board current while the dashboard renders
// it from another goroutine.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/upkeep-sh/upkeep/internal/board"
	"github.com/upkeep-sh/upkeep/internal/log"
	"github.com/upkeep-sh/upkeep/internal/model"
	"github.com/upkeep-sh/upkeep/internal/shell"
)

// Notifier gets poked whenever a task changes status so the dashboard can
// repaint immediately instead of waiting for its next periodic cycle.
type Notifier interface {
	Notify()
}

// Checker decides whether a conditional task has any work to do.
type Checker interface {
	HasWork(ctx context.Context, task model.Task) (bool, error)
}

// ServiceConfig is the configuration for the runner service.
type ServiceConfig struct {
	Tasks    []model.Task
	Board    *board.Board
	Sink     io.Writer
	Exec     shell.Executor
	Check    Checker
	Notifier Notifier
	Logger   log.Logger
}

func (c *ServiceConfig) defaults() error {
	if len(c.Tasks) == 0 {
		return fmt.Errorf("tasks are required")
	}
	if c.Board == nil {
		return fmt.Errorf("board is required")
	}
	if c.Sink == nil {
		return fmt.Errorf("sink is required")
	}
	if c.Exec == nil {
		return fmt.Errorf("executor is required")
	}
	if c.Check == nil {
		return fmt.Errorf("checker is required")
	}
	if c.Notifier == nil {
		c.Notifier = noopNotifier{}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "runner.Service"})
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Notify() {}

// Service runs the maintenance sequence.
type Service struct {
	tasks    []model.Task
	board    *board.Board
	sink     io.Writer
	exec     shell.Executor
	check    Checker
	notifier Notifier
	logger   log.Logger
}

// NewService creates a new runner service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		tasks:    cfg.Tasks,
		board:    cfg.Board,
		sink:     cfg.Sink,
		exec:     cfg.Exec,
		check:    cfg.Check,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
	}, nil
}

// Run executes every task in order. The first nonzero exit code marks that
// task failed, every task after it skipped, and ends the run: no further
// command executes. The returned results always cover the whole sequence.
func (s *Service) Run(ctx context.Context) ([]model.TaskResult, error) {
	for i, task := range s.tasks {
		err := s.runTask(ctx, task)
		if err == nil {
			continue
		}
		if !errors.Is(err, model.ErrTaskFailed) {
			return nil, err
		}

		if cascadeErr := s.cascadeSkip(i + 1); cascadeErr != nil {
			return nil, cascadeErr
		}
		s.notifier.Notify()
		return s.results()
	}

	return s.results()
}

func (s *Service) runTask(ctx context.Context, task model.Task) error {
	// Conditional tasks always run their non-destructive check first, even
	// when the previous run already cleaned everything up.
	if task.Check != "" {
		hasWork, err := s.check.HasWork(ctx, task)
		if err != nil {
			// The check is advisory. If it breaks we run the task anyway.
			s.logger.Warningf("Check for task %q failed, running it anyway: %s", task.Key, err)
			hasWork = true
		}
		if !hasWork {
			s.logger.Infof("Task %q has nothing to do", task.Key)
			if err := s.setStatus(task.Key, model.TaskStatusDone); err != nil {
				return err
			}
			return nil
		}
	}

	if err := s.setStatus(task.Key, model.TaskStatusRunning); err != nil {
		return err
	}

	exitCode, err := s.exec.Run(ctx, task.Command, s.sink)
	if err != nil {
		s.logger.Errorf("Task %q could not run: %s", task.Key, err)
		if serr := s.setStatus(task.Key, model.TaskStatusFailed); serr != nil {
			return serr
		}
		return fmt.Errorf("task %q could not run: %w: %w", task.Key, err, model.ErrTaskFailed)
	}
	if exitCode != 0 {
		s.logger.Errorf("Task %q exited with code %d", task.Key, exitCode)
		if serr := s.setStatus(task.Key, model.TaskStatusFailed); serr != nil {
			return serr
		}
		return fmt.Errorf("task %q exited with code %d: %w", task.Key, exitCode, model.ErrTaskFailed)
	}

	return s.setStatus(task.Key, model.TaskStatusDone)
}

// cascadeSkip marks every task from index from on as skipped. They never ran
// and never will within this run.
func (s *Service) cascadeSkip(from int) error {
	for _, task := range s.tasks[from:] {
		if err := s.board.Set(task.Key, model.TaskStatusSkipped); err != nil {
			return fmt.Errorf("could not mark task %q skipped: %w", task.Key, err)
		}
	}
	return nil
}

func (s *Service) setStatus(key string, status model.TaskStatus) error {
	if err := s.board.Set(key, status); err != nil {
		return fmt.Errorf("could not update task %q status: %w", key, err)
	}
	s.notifier.Notify()
	return nil
}

// results reads the terminal status of every task off the board. When any
// task failed the returned error wraps model.ErrTaskFailed.
func (s *Service) results() ([]model.TaskResult, error) {
	results := make([]model.TaskResult, 0, len(s.tasks))
	var failed *model.Task
	for i, task := range s.tasks {
		status, err := s.board.Get(task.Key)
		if err != nil {
			return nil, fmt.Errorf("could not read task %q status: %w", task.Key, err)
		}
		if status == model.TaskStatusFailed {
			failed = &s.tasks[i]
		}
		results = append(results, model.TaskResult{Key: task.Key, Label: task.Label, Status: status})
	}

	if failed != nil {
		return results, fmt.Errorf("task %q failed: %w", failed.Key, model.ErrTaskFailed)
	}
	return results, nil
}
