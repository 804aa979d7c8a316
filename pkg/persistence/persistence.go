// Package persistence provides the run-summary storage abstraction. A
// summary record is upserted on every status transition so run history
// survives independently of the checkpoint store: resumability and
// auditability are separate durability concerns.
package persistence

import (
	"context"

	"github.com/medgate/medgate/pkg/models"
)

type Persistence interface {
	SaveRun(ctx context.Context, run *models.Run) error
	RunByID(ctx context.Context, id string) (*models.Run, error)
	Runs(ctx context.Context, limit int) ([]*models.Run, error)
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
