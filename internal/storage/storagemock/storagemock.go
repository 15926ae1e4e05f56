package storagemock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/upkeep-sh/upkeep/internal/model"
)

// MockRepository is a mock implementation of storage.Repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateRun(ctx context.Context, r model.Run) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRepository) GetRun(ctx context.Context, id string) (*model.Run, error) {
	args := m.Called(ctx, id)
	run, _ := args.Get(0).(*model.Run)
	return run, args.Error(1)
}

func (m *MockRepository) ListRuns(ctx context.Context) ([]model.Run, error) {
	args := m.Called(ctx)
	runs, _ := args.Get(0).([]model.Run)
	return runs, args.Error(1)
}
