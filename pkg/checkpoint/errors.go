package checkpoint

import "errors"

// ErrCheckpointNotFound indicates there is nothing to resume for the given
// run identifier. Callers must surface this distinctly from a generic
// not-found: a run that reached awaiting-decision without a readable
// checkpoint is a durability failure, not a bad identifier.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// IsCheckpointNotFound checks if an error indicates a missing checkpoint.
func IsCheckpointNotFound(err error) bool {
	return errors.Is(err, ErrCheckpointNotFound)
}
