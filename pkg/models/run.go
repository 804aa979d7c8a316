// Package models defines the core domain models for the content validation pipeline.
package models

import "time"

// RunStatus represents the lifecycle state of a validation run.
type RunStatus string

const (
	RunStatusPending          RunStatus = "pending"           // Created, nothing executed yet
	RunStatusFetching         RunStatus = "fetching"          // Content snapshot being assembled
	RunStatusDispatched       RunStatus = "dispatched"        // Tasks running concurrently
	RunStatusAwaitingDecision RunStatus = "awaiting-decision" // Suspended at the human gate
	RunStatusResuming         RunStatus = "resuming"          // Decision received, applying it
	RunStatusApproved         RunStatus = "approved"          // Terminal, human approved
	RunStatusRejected         RunStatus = "rejected"          // Terminal, human rejected
	RunStatusFailed           RunStatus = "failed"            // Terminal, unrecoverable error
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusApproved || s == RunStatusRejected || s == RunStatusFailed
}

// Decision is the payload a human reviewer submits to resume a suspended run.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Run is one execution of the validation pipeline for one input URL.
//
// AggregateScore, AggregatePass and Synthesis stay nil until every dispatched
// task has a terminal outcome. Results holds at most one entry per task
// identifier; the reducer enforces that.
type Run struct {
	ID             string           `json:"id"              validate:"required"`
	URL            string           `json:"url"             validate:"required,url"`
	RequestedBy    string           `json:"requested_by"`
	Status         RunStatus        `json:"status"          validate:"required"`
	Routing        *RoutingDecision `json:"routing,omitempty"`
	Results        []TaskResult     `json:"results"`
	Errors         []string         `json:"errors"`
	AggregateScore *float64         `json:"aggregate_score,omitempty"`
	AggregatePass  *bool            `json:"aggregate_pass,omitempty"`
	Synthesis      *Synthesis       `json:"synthesis,omitempty"`
	Decision       *Decision        `json:"decision,omitempty"`
	Feedback       string           `json:"feedback,omitempty"`
	ReviewedBy     string           `json:"reviewed_by,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// NewRun creates a pending run for the given input URL.
func NewRun(id, url, requestedBy string) *Run {
	now := time.Now().UTC()

	return &Run{
		ID:          id,
		URL:         url,
		RequestedBy: requestedBy,
		Status:      RunStatusPending,
		Results:     []TaskResult{},
		Errors:      []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// RecordError appends a non-fatal error to the run's error list.
func (r *Run) RecordError(message string) {
	r.Errors = append(r.Errors, message)
}
