// Package board holds the shared live status of every task in a run.
//
// The runner is the only writer, the renderer reads concurrently. A single
// status value is never observed torn, but there is no cross-key snapshot
// guarantee: the renderer may see task N running while N+1 is still pending
// even if both have progressed by the time the frame is painted.
package board

import (
	"fmt"
	"sync"

	"github.com/upkeep-sh/upkeep/internal/model"
)

// Board is a thread-safe mapping of task key to its current status.
// The key set is fixed at creation and statuses start as pending.
type Board struct {
	mu       sync.RWMutex
	statuses map[string]model.TaskStatus
}

// New creates a board for the given tasks, all initialized to pending.
func New(tasks []model.Task) *Board {
	statuses := make(map[string]model.TaskStatus, len(tasks))
	for _, t := range tasks {
		statuses[t.Key] = model.TaskStatusPending
	}

	return &Board{statuses: statuses}
}

// Set overwrites the status for key.
func (b *Board) Set(key string, status model.TaskStatus) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.statuses[key]; !ok {
		return fmt.Errorf("task %s: %w", key, model.ErrNotFound)
	}
	b.statuses[key] = status

	return nil
}

// Get returns the current status for key.
func (b *Board) Get(key string) (model.TaskStatus, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	status, ok := b.statuses[key]
	if !ok {
		return "", fmt.Errorf("task %s: %w", key, model.ErrNotFound)
	}

	return status, nil
}

// Snapshot returns a copy of all current statuses.
func (b *Board) Snapshot() map[string]model.TaskStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()

	statuses := make(map[string]model.TaskStatus, len(b.statuses))
	for k, v := range b.statuses {
		statuses[k] = v
	}

	return statuses
}
