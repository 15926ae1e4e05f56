package storage

import (
	"context"

	"github.com/upkeep-sh/upkeep/internal/model"
)

// Repository is the interface for run history persistence. It is an audit
// trail of finished runs, live run status never goes through it.
type Repository interface {
	CreateRun(ctx context.Context, r model.Run) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRuns(ctx context.Context) ([]model.Run, error)
}
