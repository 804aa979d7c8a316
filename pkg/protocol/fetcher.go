package protocol

import (
	"context"

	"github.com/medgate/medgate/pkg/models"
)

// Fetcher assembles the immutable content snapshot for an input URL. A fetch
// failure is fatal to the run; no tasks are dispatched.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*models.ContentSnapshot, error)
}
