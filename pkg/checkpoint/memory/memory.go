// Package memory provides an in-memory checkpoint store. Durable only for
// the lifetime of the process; acceptable for development, never for
// deployments where review latency can exceed process lifetime.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/medgate/medgate/pkg/checkpoint"
	"github.com/medgate/medgate/pkg/models"
)

type Store struct {
	mu          sync.RWMutex
	checkpoints map[string]*models.Checkpoint
}

func NewStore(logger *slog.Logger) *Store {
	logger.Warn("Using in-memory checkpoint store: a process restart loses all pending reviews")

	return &Store{checkpoints: make(map[string]*models.Checkpoint)}
}

func (s *Store) Put(_ context.Context, cp *models.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *cp
	s.checkpoints[cp.RunID] = &stored

	return nil
}

func (s *Store) Get(_ context.Context, runID string) (*models.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp, ok := s.checkpoints[runID]
	if !ok {
		return nil, checkpoint.ErrCheckpointNotFound
	}

	out := *cp

	return &out, nil
}

func (s *Store) Delete(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.checkpoints, runID)

	return nil
}

func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}
