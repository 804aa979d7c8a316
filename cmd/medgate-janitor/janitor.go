// Package main provides the checkpoint janitor: a scheduled sweep that
// removes checkpoints left behind by runs that already reached a terminal
// status.
package main

import (
	"context"
	"log/slog"

	"github.com/medgate/medgate/pkg/checkpoint"
	"github.com/medgate/medgate/pkg/persistence"
)

type Janitor struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	checkpoints checkpoint.Store
	sweepLimit  int
}

func NewJanitor(logger *slog.Logger, store persistence.Persistence, checkpoints checkpoint.Store, sweepLimit int) *Janitor {
	return &Janitor{
		logger:      logger,
		persistence: store,
		checkpoints: checkpoints,
		sweepLimit:  sweepLimit,
	}
}

// Sweep removes the checkpoint of every terminal run in the most recent
// sweepLimit runs. Suspended runs are never touched: a checkpoint stays
// valid for as long as its run awaits a decision.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	runs, err := j.persistence.Runs(ctx, j.sweepLimit)
	if err != nil {
		return 0, err
	}

	removed := 0

	for _, run := range runs {
		if !run.Status.IsTerminal() {
			continue
		}

		if _, err := j.checkpoints.Get(ctx, run.ID); err != nil {
			if checkpoint.IsCheckpointNotFound(err) {
				continue
			}

			j.logger.Warn("Failed to inspect checkpoint", "run_id", run.ID, "error", err)

			continue
		}

		if err := j.checkpoints.Delete(ctx, run.ID); err != nil {
			j.logger.Warn("Failed to delete stale checkpoint", "run_id", run.ID, "error", err)

			continue
		}

		j.logger.Info("Removed stale checkpoint", "run_id", run.ID, "status", run.Status)

		removed++
	}

	return removed, nil
}
