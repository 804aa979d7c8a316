// Package protocol defines the contracts between the orchestration core and
// its pluggable collaborators: evaluation tasks, the content fetcher, the
// synthesizer and the knowledge base.
package protocol

import (
	"context"

	"github.com/medgate/medgate/pkg/models"
)

// Task is one independent evaluation unit. Evaluate receives the shared
// read-only content snapshot and returns exactly one result or an error.
// Implementations must honor ctx cancellation (the dispatcher enforces a
// per-call timeout) and must not mutate the snapshot.
type Task interface {
	ID() string
	Evaluate(ctx context.Context, content *models.ContentSnapshot) (*models.TaskResult, error)
}

// TaskFactory creates task instances from configuration. Config maps are
// validated against the factory's JSON schema by the registry before Create
// is called.
type TaskFactory interface {
	ID() string
	Schema() map[string]any
	Create(config map[string]any) (Task, error)
}
