package models

// RoutingDecision is the output of the triage step: which tasks run for this
// input and which are explicitly skipped. Run and Skip are disjoint and
// together cover the full task catalog for the execution.
type RoutingDecision struct {
	Run    []string `json:"run"    validate:"required"`
	Skip   []string `json:"skip"`
	Label  string   `json:"label"  validate:"required"`
	Method string   `json:"method" validate:"required"`
}

// Includes reports whether taskID is in the decision's run set.
func (d *RoutingDecision) Includes(taskID string) bool {
	for _, id := range d.Run {
		if id == taskID {
			return true
		}
	}

	return false
}
