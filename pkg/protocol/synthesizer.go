package protocol

import (
	"context"

	"github.com/medgate/medgate/pkg/models"
)

// Synthesizer produces the advisory recommendation shown to the human
// reviewer. A synthesizer failure never blocks a run from reaching the
// decision gate; the engine proceeds without a recommendation.
type Synthesizer interface {
	Synthesize(ctx context.Context, run *models.Run) (*models.Synthesis, error)
}
