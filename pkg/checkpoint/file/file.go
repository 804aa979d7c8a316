// Package file provides a file-based checkpoint store. Durable across
// restarts as long as the directory survives, so it is the simplest backend
// that makes suspended reviews restart-safe.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/medgate/medgate/pkg/checkpoint"
	"github.com/medgate/medgate/pkg/models"
)

type Store struct {
	root string
	mu   sync.RWMutex
}

func NewStore(root string) *Store {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Store{root: cleanRoot}
}

func (s *Store) dir() string {
	return filepath.Join(s.root, "checkpoints")
}

func validateRunID(runID string) error {
	if runID == "" {
		return errors.New("run ID cannot be empty")
	}

	if strings.Contains(runID, "..") || strings.ContainsAny(runID, `/\`) {
		return errors.New("run ID contains invalid characters")
	}

	return nil
}

func (s *Store) Put(_ context.Context, cp *models.Checkpoint) error {
	if err := validateRunID(cp.RunID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.MkdirAll(s.dir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint for run %s: %w", cp.RunID, err)
	}

	err = os.WriteFile(filepath.Join(s.dir(), cp.RunID+".json"), data, 0600)
	if err != nil {
		return fmt.Errorf("failed to write checkpoint for run %s: %w", cp.RunID, err)
	}

	return nil
}

func (s *Store) Get(_ context.Context, runID string) (*models.Checkpoint, error) {
	if err := validateRunID(runID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.dir(), runID+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, checkpoint.ErrCheckpointNotFound
		}

		return nil, fmt.Errorf("failed to read checkpoint for run %s: %w", runID, err)
	}

	var cp models.Checkpoint

	err = json.Unmarshal(data, &cp)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint for run %s: %w", runID, err)
	}

	return &cp, nil
}

func (s *Store) Delete(_ context.Context, runID string) error {
	if err := validateRunID(runID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(filepath.Join(s.dir(), runID+".json"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint for run %s: %w", runID, err)
	}

	return nil
}

func (s *Store) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}
