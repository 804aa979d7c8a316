// Package checkpoint provides durable keyed storage for suspended run state.
// This store exists for resumability; the run-summary store in
// pkg/persistence exists for auditability. The two concerns are deliberately
// kept in separate stores.
package checkpoint

import (
	"context"

	"github.com/medgate/medgate/pkg/models"
)

// Store is the contract every checkpoint backend satisfies. Put overwrites
// any prior checkpoint for the key; Get returns the most recent write.
// Operations on different keys never block each other.
type Store interface {
	Put(ctx context.Context, checkpoint *models.Checkpoint) error
	Get(ctx context.Context, runID string) (*models.Checkpoint, error)
	Delete(ctx context.Context, runID string) error
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
