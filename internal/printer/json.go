package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/upkeep-sh/upkeep/internal/model"
)

// JSONPrinter prints run history in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// listItem represents a run in the list output (subset of fields).
type listItem struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	FailedTask string    `json:"failed_task,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// runOutput represents the full run output.
type runOutput struct {
	ID         string       `json:"id"`
	Status     string       `json:"status"`
	FailedTask string       `json:"failed_task,omitempty"`
	LogPath    string       `json:"log_path"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Tasks      []taskOutput `json:"tasks"`
}

// taskOutput represents one task result within a run.
type taskOutput struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Status string `json:"status"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintRunList prints runs in JSON format with a subset of fields.
func (j *JSONPrinter) PrintRunList(runs []model.Run) error {
	items := make([]listItem, len(runs))
	for i, r := range runs {
		items[i] = listItem{
			ID:         r.ID,
			Status:     string(r.Status),
			FailedTask: r.FailedTask,
			StartedAt:  r.StartedAt.UTC(),
			FinishedAt: r.FinishedAt.UTC(),
		}
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// PrintRun prints a detailed single run in JSON format.
func (j *JSONPrinter) PrintRun(run model.Run) error {
	output := runOutput{
		ID:         run.ID,
		Status:     string(run.Status),
		FailedTask: run.FailedTask,
		LogPath:    run.LogPath,
		StartedAt:  run.StartedAt.UTC(),
		FinishedAt: run.FinishedAt.UTC(),
		Tasks:      make([]taskOutput, 0, len(run.Tasks)),
	}
	for _, task := range run.Tasks {
		output.Tasks = append(output.Tasks, taskOutput{
			Key:    task.Key,
			Label:  task.Label,
			Status: string(task.Status),
		})
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	output := messageOutput{Message: msg}
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
