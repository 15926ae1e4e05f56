package model

// TaskStatus represents the state of a maintenance task.
type TaskStatus string

const (
	TaskStatusPending TaskStatus = "pending"
	TaskStatusRunning TaskStatus = "running"
	TaskStatusDone    TaskStatus = "done"
	TaskStatusSkipped TaskStatus = "skipped"
	TaskStatusFailed  TaskStatus = "failed"
)

// Task represents a single step in the fixed maintenance sequence.
type Task struct {
	// Key is the stable task identity (e.g. "refresh").
	Key string
	// Label is the human friendly name shown on the dashboard.
	Label string
	// Command is the opaque shell command the task executes.
	Command string
	// Check is an optional non-destructive command run before Command.
	// When it reports there is nothing to do, the task completes without
	// Command ever being executed.
	Check string
}
