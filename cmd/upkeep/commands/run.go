package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/oklog/ulid/v2"

	"github.com/upkeep-sh/upkeep/internal/board"
	"github.com/upkeep-sh/upkeep/internal/config"
	"github.com/upkeep-sh/upkeep/internal/conventions"
	"github.com/upkeep-sh/upkeep/internal/diag"
	"github.com/upkeep-sh/upkeep/internal/logsink"
	"github.com/upkeep-sh/upkeep/internal/model"
	"github.com/upkeep-sh/upkeep/internal/precheck"
	"github.com/upkeep-sh/upkeep/internal/render"
	"github.com/upkeep-sh/upkeep/internal/runner"
	"github.com/upkeep-sh/upkeep/internal/shell"
	"github.com/upkeep-sh/upkeep/internal/storage/sqlite"
	"github.com/upkeep-sh/upkeep/internal/tasks"
)

type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewRunCommand returns the run command.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Run the full maintenance sequence with a live dashboard.").Default()

	return c
}

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cfg, err := config.Load(c.rootCmd.ConfigPath)
	if err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}

	taskList, err := tasks.WithOverrides(cfg.Commands)
	if err != nil {
		return fmt.Errorf("invalid task configuration: %w", err)
	}

	runID := ulid.Make().String()
	startedAt := time.Now().UTC()

	sink, err := logsink.NewSink(logsink.SinkConfig{
		Path:   conventions.LogFilePath(c.rootCmd.LogDir, runID),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create run log: %w", err)
	}
	defer sink.Close()

	statusBoard := board.New(taskList)

	exec, err := shell.NewExecutor(shell.ExecutorConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create executor: %w", err)
	}

	renderer, err := render.NewService(render.ServiceConfig{
		Tasks:  taskList,
		Board:  statusBoard,
		Sink:   sink,
		Out:    c.rootCmd.Stdout,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create renderer: %w", err)
	}

	check, err := precheck.NewService(precheck.ServiceConfig{Exec: exec, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create precheck: %w", err)
	}

	runSvc, err := runner.NewService(runner.ServiceConfig{
		Tasks:    taskList,
		Board:    statusBoard,
		Sink:     sink,
		Exec:     exec,
		Check:    check,
		Notifier: renderer,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("could not create runner: %w", err)
	}

	var (
		results []model.TaskResult
		runErr  error
	)

	// Two units run concurrently: the sequential task runner and the periodic
	// dashboard renderer. Whoever ends first takes the other down with it.
	var g run.Group
	{
		loopCtx, loopCancel := context.WithCancel(ctx)

		g.Add(
			func() error {
				return renderer.Loop(loopCtx)
			},
			func(_ error) {
				loopCancel()
			},
		)
	}
	{
		runCtx, runCancel := context.WithCancel(ctx)

		g.Add(
			func() error {
				results, runErr = runSvc.Run(runCtx)
				// A task failure ends the run but is not an infrastructure
				// error, it is reported after the final render.
				if runErr != nil && !errors.Is(runErr, model.ErrTaskFailed) {
					return runErr
				}
				return nil
			},
			func(_ error) {
				runCancel()
			},
		)
	}

	if err := g.Run(); err != nil {
		return fmt.Errorf("maintenance run failed: %w", err)
	}

	// Last frame with terminal statuses, the loop may have stopped before
	// painting the final transition.
	renderer.Render()

	finishedAt := time.Now().UTC()

	failedTask := ""
	for _, r := range results {
		if r.Status == model.TaskStatusFailed {
			failedTask = r.Key
		}
	}

	// Diagnostics are pointless when nothing was touched, which only happens
	// when the very first task fails.
	firstFailed := len(results) > 0 && results[0].Status == model.TaskStatusFailed
	if !firstFailed {
		c.printDiagnostics(ctx, exec, cfg.Diagnostics)
	}

	c.recordRun(ctx, model.Run{
		ID:         runID,
		Status:     runStatus(failedTask),
		FailedTask: failedTask,
		LogPath:    sink.Path(),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Tasks:      results,
	})

	fmt.Fprintf(c.rootCmd.Stdout, "\nRun log: %s\n", sink.Path())

	if runErr != nil {
		return fmt.Errorf("maintenance run failed: %w", runErr)
	}

	return nil
}

func (c RunCommand) printDiagnostics(ctx context.Context, exec shell.Executor, commands []string) {
	diagSvc, err := diag.NewService(diag.ServiceConfig{
		Exec:     exec,
		Commands: commands,
		Logger:   c.rootCmd.Logger,
	})
	if err != nil {
		c.rootCmd.Logger.Warningf("Could not create diagnostics service: %s", err)
		return
	}

	out, err := diagSvc.Collect(ctx)
	if err != nil {
		c.rootCmd.Logger.Warningf("Could not collect diagnostics: %s", err)
		return
	}
	if out != "" {
		fmt.Fprintf(c.rootCmd.Stdout, "\n%s\n", out)
	}
}

// recordRun appends the run to the history journal. History is an audit
// trail, failing to write it doesn't fail the run.
func (c RunCommand) recordRun(ctx context.Context, run model.Run) {
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: c.rootCmd.Logger,
	})
	if err != nil {
		c.rootCmd.Logger.Warningf("Could not open run history: %s", err)
		return
	}
	defer repo.Close()

	if err := repo.CreateRun(ctx, run); err != nil {
		c.rootCmd.Logger.Warningf("Could not record run history: %s", err)
	}
}

func runStatus(failedTask string) model.RunStatus {
	if failedTask != "" {
		return model.RunStatusFailed
	}
	return model.RunStatusSucceeded
}
