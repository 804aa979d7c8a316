// Package file provides file-based run-summary persistence, suitable for
// development and tests.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/medgate/medgate/pkg/models"
	"github.com/medgate/medgate/pkg/persistence"
)

// Persistence stores each run as runs/<id>.json under a root directory.
type Persistence struct {
	root string
	mu   sync.RWMutex
}

func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{root: cleanRoot}
}

func (p *Persistence) runsDir() string {
	return filepath.Join(p.root, "runs")
}

func validateRunID(id string) error {
	if id == "" {
		return errors.New("run ID cannot be empty")
	}

	// Run IDs become file names; reject path traversal attempts.
	if strings.Contains(id, "..") || strings.ContainsAny(id, `/\`) {
		return errors.New("run ID contains invalid characters")
	}

	return nil
}

func (p *Persistence) SaveRun(_ context.Context, run *models.Run) error {
	if err := validateRunID(run.ID); err != nil {
		return persistence.NewRunError("SaveRun", run.ID, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err := os.MkdirAll(p.runsDir(), 0750)
	if err != nil {
		return persistence.NewRunError("SaveRun", run.ID, fmt.Errorf("failed to create runs directory: %w", err))
	}

	data, err := json.Marshal(run)
	if err != nil {
		return persistence.NewRunError("SaveRun", run.ID, fmt.Errorf("failed to marshal run: %w", err))
	}

	path := filepath.Join(p.runsDir(), run.ID+".json")

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		return persistence.NewRunError("SaveRun", run.ID, fmt.Errorf("failed to write run file: %w", err))
	}

	return nil
}

func (p *Persistence) RunByID(_ context.Context, id string) (*models.Run, error) {
	if err := validateRunID(id); err != nil {
		return nil, persistence.NewRunError("RunByID", id, err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(p.runsDir(), id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewRunError("RunByID", id, persistence.ErrRunNotFound)
		}

		return nil, persistence.NewRunError("RunByID", id, err)
	}

	var run models.Run

	err = json.Unmarshal(data, &run)
	if err != nil {
		return nil, persistence.NewRunError("RunByID", id, fmt.Errorf("failed to unmarshal run: %w", err))
	}

	return &run, nil
}

// Runs returns up to limit runs ordered by creation time, newest first.
func (p *Persistence) Runs(_ context.Context, limit int) ([]*models.Run, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entries, err := os.ReadDir(p.runsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.Run{}, nil
		}

		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	runs := make([]*models.Run, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(p.runsDir(), entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read run file %s: %w", entry.Name(), err)
		}

		var run models.Run

		err = json.Unmarshal(data, &run)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal run file %s: %w", entry.Name(), err)
		}

		runs = append(runs, &run)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	return runs, nil
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}
