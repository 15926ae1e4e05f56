package shellmock

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// MockExecutor is a mock implementation of shell.Executor.
type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) Run(ctx context.Context, command string, out io.Writer) (int, error) {
	args := m.Called(ctx, command, out)
	return args.Int(0), args.Error(1)
}

func (m *MockExecutor) Capture(ctx context.Context, command string) (string, int, error) {
	args := m.Called(ctx, command)
	return args.String(0), args.Int(1), args.Error(2)
}
