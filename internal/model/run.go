package model

import "time"

// RunStatus represents the final outcome of a maintenance run.
type RunStatus string

const (
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// TaskResult is the terminal status of one task within a finished run.
type TaskResult struct {
	Key    string
	Label  string
	Status TaskStatus
}

// Run represents one finished maintenance run.
type Run struct {
	// ID is a ULID, unique and derived from the run start timestamp.
	ID         string
	Status     RunStatus
	FailedTask string
	LogPath    string
	StartedAt  time.Time
	FinishedAt time.Time
	Tasks      []TaskResult
}
