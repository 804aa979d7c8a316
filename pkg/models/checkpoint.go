package models

import "time"

// Gate names the suspension point a checkpoint was written at. Only one true
// suspension point exists today: the human decision gate.
type Gate string

const GateHumanDecision Gate = "human-decision"

// Checkpoint is the durable representation of a suspended run. It captures
// the full run state at the moment of suspension so a resume request can
// rehydrate the run exactly, even in a different process.
type Checkpoint struct {
	RunID     string    `json:"run_id" validate:"required"`
	Gate      Gate      `json:"gate"   validate:"required"`
	Token     string    `json:"token"  validate:"required"`
	State     Run       `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCheckpoint snapshots the given run at the given gate. The token
// identifies this write; a later overwrite for the same run carries a new
// token, superseding this one.
func NewCheckpoint(run *Run, gate Gate, token string) *Checkpoint {
	return &Checkpoint{
		RunID:     run.ID,
		Gate:      gate,
		Token:     token,
		State:     *run,
		CreatedAt: time.Now().UTC(),
	}
}
