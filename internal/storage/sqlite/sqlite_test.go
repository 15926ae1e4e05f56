package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upkeep-sh/upkeep/internal/model"
	"github.com/upkeep-sh/upkeep/internal/storage/sqlite"
)

func runFixture(id string, startedAt time.Time) model.Run {
	return model.Run{
		ID:         id,
		Status:     model.RunStatusFailed,
		FailedTask: "dist_upgrade",
		LogPath:    "/var/tmp/upkeep-" + id + ".log",
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(12 * time.Minute),
		Tasks: []model.TaskResult{
			{Key: "refresh", Label: "Repository refresh", Status: model.TaskStatusDone},
			{Key: "update", Label: "Package update", Status: model.TaskStatusDone},
			{Key: "dist_upgrade", Label: "Distribution upgrade", Status: model.TaskStatusFailed},
			{Key: "autoremove", Label: "Unneeded package removal", Status: model.TaskStatusSkipped},
		},
	}
}

func newRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepositoryCreateAndGet(t *testing.T) {
	repo := newRepo(t)
	// Timestamps are stored with second precision.
	run := runFixture("01RUN1", time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC))

	require.NoError(t, repo.CreateRun(context.Background(), run))

	got, err := repo.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run, *got)
}

func TestRepositoryGetMissing(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.GetRun(context.Background(), "missing")

	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestRepositoryCreateDuplicate(t *testing.T) {
	repo := newRepo(t)
	run := runFixture("01RUN1", time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC))

	require.NoError(t, repo.CreateRun(context.Background(), run))
	err := repo.CreateRun(context.Background(), run)

	assert.Error(t, err)
}

func TestRepositoryListRunsOrder(t *testing.T) {
	repo := newRepo(t)
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	older := runFixture("01OLDER", base)
	newer := runFixture("01NEWER", base.Add(time.Hour))
	require.NoError(t, repo.CreateRun(context.Background(), older))
	require.NoError(t, repo.CreateRun(context.Background(), newer))

	runs, err := repo.ListRuns(context.Background())

	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "01NEWER", runs[0].ID)
	assert.Equal(t, "01OLDER", runs[1].ID)
	assert.Len(t, runs[0].Tasks, 4)
}

func TestRepositoryReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	run := runFixture("01RUN1", time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC))

	repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{DBPath: dbPath})
	require.NoError(t, err)
	require.NoError(t, repo.CreateRun(context.Background(), run))
	require.NoError(t, repo.Close())

	repo, err = sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{DBPath: dbPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	got, err := repo.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run, *got)
}
