package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/upkeep-sh/upkeep/internal/history"
	"github.com/upkeep-sh/upkeep/internal/model"
	"github.com/upkeep-sh/upkeep/internal/printer"
	"github.com/upkeep-sh/upkeep/internal/storage/sqlite"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

type HistoryCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	output string
	status string
}

// NewHistoryCommand returns the history command.
func NewHistoryCommand(rootCmd *RootCommand, app *kingpin.Application) *HistoryCommand {
	c := &HistoryCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("history", "List past maintenance runs.")
	c.Cmd.Flag("output", "Output format.").Short('o').Default(outputTable).EnumVar(&c.output, outputTable, outputJSON)
	c.Cmd.Flag("status", "Only show runs with this outcome.").EnumVar(&c.status, string(model.RunStatusSucceeded), string(model.RunStatusFailed))

	return c
}

func (c HistoryCommand) Name() string { return c.Cmd.FullCommand() }

func (c HistoryCommand) Run(ctx context.Context) error {
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not open run history: %w", err)
	}
	defer repo.Close()

	svc, err := history.NewService(history.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create history service: %w", err)
	}

	req := history.Request{}
	if c.status != "" {
		status := model.RunStatus(c.status)
		req.StatusFilter = &status
	}

	runs, err := svc.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("could not list runs: %w", err)
	}

	var p printer.Printer
	switch c.output {
	case outputJSON:
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default:
		p = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	if len(runs) == 0 && c.output == outputTable {
		return p.PrintMessage("No maintenance runs recorded yet.")
	}

	return p.PrintRunList(runs)
}
