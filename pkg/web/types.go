// Package web provides the HTTP surface of the validation pipeline: run
// submission, inspection, the reviewer decision endpoint and the live event
// stream.
package web

// CreateRunRequest is the request body for submitting a URL for validation.
type CreateRunRequest struct {
	URL         string `json:"url"          validate:"required,url"`
	RequestedBy string `json:"requested_by"`
}

// DecisionRequest is the request body a reviewer submits to resume a
// suspended run.
type DecisionRequest struct {
	Decision   string `json:"decision"    validate:"required,oneof=approve reject"`
	Feedback   string `json:"feedback"`
	ReviewedBy string `json:"reviewed_by"`
}
