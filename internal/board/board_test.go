package board_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upkeep-sh/upkeep/internal/board"
	"github.com/upkeep-sh/upkeep/internal/model"
)

func testTasks() []model.Task {
	return []model.Task{
		{Key: "refresh", Label: "Repository refresh"},
		{Key: "update", Label: "Package update"},
		{Key: "dist_upgrade", Label: "Distribution upgrade"},
	}
}

func TestBoardSetGet(t *testing.T) {
	tests := map[string]struct {
		setup     func(b *board.Board) error
		getKey    string
		expStatus model.TaskStatus
		expErr    error
	}{
		"all tasks should start as pending": {
			setup:     func(b *board.Board) error { return nil },
			getKey:    "update",
			expStatus: model.TaskStatusPending,
		},

		"a set status should be returned on get": {
			setup:     func(b *board.Board) error { return b.Set("refresh", model.TaskStatusRunning) },
			getKey:    "refresh",
			expStatus: model.TaskStatusRunning,
		},

		"setting overwrites the previous status": {
			setup: func(b *board.Board) error {
				if err := b.Set("refresh", model.TaskStatusRunning); err != nil {
					return err
				}
				return b.Set("refresh", model.TaskStatusDone)
			},
			getKey:    "refresh",
			expStatus: model.TaskStatusDone,
		},

		"getting an unknown key should fail": {
			setup:  func(b *board.Board) error { return nil },
			getKey: "missing",
			expErr: model.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			b := board.New(testTasks())
			require.NoError(t, test.setup(b))

			status, err := b.Get(test.getKey)

			if test.expErr != nil {
				assert.True(t, errors.Is(err, test.expErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expStatus, status)
		})
	}
}

func TestBoardSetUnknownKey(t *testing.T) {
	b := board.New(testTasks())

	err := b.Set("missing", model.TaskStatusRunning)

	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestBoardSnapshot(t *testing.T) {
	b := board.New(testTasks())
	require.NoError(t, b.Set("refresh", model.TaskStatusDone))
	require.NoError(t, b.Set("update", model.TaskStatusRunning))

	got := b.Snapshot()

	exp := map[string]model.TaskStatus{
		"refresh":      model.TaskStatusDone,
		"update":       model.TaskStatusRunning,
		"dist_upgrade": model.TaskStatusPending,
	}
	assert.Equal(t, exp, got)

	// Mutating the snapshot must not affect the board.
	got["refresh"] = model.TaskStatusFailed
	status, err := b.Get("refresh")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusDone, status)
}

func TestBoardConcurrentReadWrite(t *testing.T) {
	b := board.New(testTasks())
	valid := map[model.TaskStatus]bool{
		model.TaskStatusPending: true,
		model.TaskStatusRunning: true,
		model.TaskStatusDone:    true,
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = b.Set("update", model.TaskStatusRunning)
			_ = b.Set("update", model.TaskStatusDone)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			status, err := b.Get("update")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if !valid[status] {
				t.Errorf("torn status read: %q", status)
				return
			}
			_ = b.Snapshot()
		}
	}()

	wg.Wait()
}
