// Package shell executes opaque shell command strings on the host.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/upkeep-sh/upkeep/internal/log"
)

// Executor runs opaque command strings on the host.
type Executor interface {
	// Run executes command with its combined stdout/stderr streamed into out
	// as it is produced, blocks until the command finishes and returns its
	// exit code. A non-nil error means the command could not be run at all.
	Run(ctx context.Context, command string, out io.Writer) (exitCode int, err error)

	// Capture executes command and returns its combined output and exit code.
	Capture(ctx context.Context, command string) (output string, exitCode int, err error)
}

// ExecutorConfig is the configuration for the shell executor.
type ExecutorConfig struct {
	// Shell is the interpreter the command strings are passed to.
	Shell  string
	Logger log.Logger
}

func (c *ExecutorConfig) defaults() error {
	if c.Shell == "" {
		c.Shell = "/bin/sh"
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "shell.Executor"})
	return nil
}

type executor struct {
	shell  string
	logger log.Logger
}

// NewExecutor creates a shell based executor.
func NewExecutor(cfg ExecutorConfig) (Executor, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &executor{
		shell:  cfg.Shell,
		logger: cfg.Logger,
	}, nil
}

func (e *executor) Run(ctx context.Context, command string, out io.Writer) (int, error) {
	e.logger.Debugf("Running command: %s", command)

	cmd := exec.CommandContext(ctx, e.shell, "-c", command)
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("could not run command: %w", err)
	}

	return 0, nil
}

func (e *executor) Capture(ctx context.Context, command string) (string, int, error) {
	var out bytes.Buffer
	exitCode, err := e.Run(ctx, command, &out)
	if err != nil {
		return "", -1, err
	}

	return out.String(), exitCode, nil
}
