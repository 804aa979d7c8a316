package engine

import "errors"

var (
	// ErrRunAlreadyActive is returned when a run is already being executed
	// or resumed by this process. At most one activation per run.
	ErrRunAlreadyActive = errors.New("run is already active")

	// ErrNotAwaitingDecision is returned by Resume when the run is not
	// suspended at the human gate.
	ErrNotAwaitingDecision = errors.New("run is not awaiting a decision")

	// ErrAlreadyDecided is returned by Resume when the run already reached a
	// decided terminal status. Exactly one decision per run.
	ErrAlreadyDecided = errors.New("run already has a decision")

	// ErrInvalidDecision is returned by Resume for a decision value other
	// than approve or reject.
	ErrInvalidDecision = errors.New("decision must be approve or reject")
)

func IsRunAlreadyActive(err error) bool {
	return errors.Is(err, ErrRunAlreadyActive)
}

func IsNotAwaitingDecision(err error) bool {
	return errors.Is(err, ErrNotAwaitingDecision)
}

func IsAlreadyDecided(err error) bool {
	return errors.Is(err, ErrAlreadyDecided)
}
