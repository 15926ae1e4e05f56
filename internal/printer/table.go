package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/upkeep-sh/upkeep/internal/model"
)

// TablePrinter prints run history in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintRunList prints runs in a table format.
func (t *TablePrinter) PrintRunList(runs []model.Run) error {
	if len(runs) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tSTATUS\tFAILED TASK\tSTARTED\tDURATION")

	for _, r := range runs {
		failed := r.FailedTask
		if failed == "" {
			failed = "-"
		}
		duration := r.FinishedAt.Sub(r.StartedAt).Round(1e9)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Status, failed, TimeAgo(r.StartedAt), duration)
	}

	return nil
}

// PrintRun prints a detailed single run.
func (t *TablePrinter) PrintRun(run model.Run) error {
	fmt.Fprintf(t.writer, "ID:        %s\n", run.ID)
	fmt.Fprintf(t.writer, "Status:    %s\n", run.Status)
	if run.FailedTask != "" {
		fmt.Fprintf(t.writer, "Failed:    %s\n", run.FailedTask)
	}
	fmt.Fprintf(t.writer, "Log:       %s\n", run.LogPath)
	fmt.Fprintf(t.writer, "Started:   %s\n", FormatTimestamp(run.StartedAt))
	fmt.Fprintf(t.writer, "Finished:  %s\n", FormatTimestamp(run.FinishedAt))

	if len(run.Tasks) == 0 {
		return nil
	}

	fmt.Fprintln(t.writer)
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "TASK\tSTATUS")
	for _, task := range run.Tasks {
		fmt.Fprintf(tw, "%s\t%s\n", task.Label, task.Status)
	}

	return nil
}

// PrintMessage prints a simple message.
func (t *TablePrinter) PrintMessage(msg string) error {
	_, err := fmt.Fprintln(t.writer, msg)
	return err
}
