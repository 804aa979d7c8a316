package models

// TaskResult is the immutable output of one evaluation task. A task produces
// exactly one result (or a recorded failure) per run; results are never
// mutated after creation.
type TaskResult struct {
	TaskID          string   `json:"task_id" validate:"required"`
	Passed          bool     `json:"passed"`
	Score           float64  `json:"score"   validate:"gte=0,lte=1"`
	PassedChecks    []string `json:"passed_checks"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}
