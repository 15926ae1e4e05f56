package history

import (
	"context"
	"fmt"

	"github.com/upkeep-sh/upkeep/internal/log"
	"github.com/upkeep-sh/upkeep/internal/model"
	"github.com/upkeep-sh/upkeep/internal/storage"
)

// ServiceConfig is the configuration for the history service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service lists recorded maintenance runs with optional filtering.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new history service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the history request parameters.
type Request struct {
	// StatusFilter is an optional filter to only show runs with this outcome.
	StatusFilter *model.RunStatus
}

// Run lists recorded runs, newest first, optionally filtered by outcome.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Run, error) {
	runs, err := s.repo.ListRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list runs: %w", err)
	}

	if req.StatusFilter != nil {
		filtered := make([]model.Run, 0, len(runs))
		for _, r := range runs {
			if r.Status == *req.StatusFilter {
				filtered = append(filtered, r)
			}
		}
		runs = filtered
	}

	s.logger.Debugf("found %d runs", len(runs))
	return runs, nil
}
