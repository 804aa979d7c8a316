package models

// Recommendation is the categorical outcome of the synthesis stage.
type Recommendation string

const (
	RecommendationProceed       Recommendation = "proceed"
	RecommendationBlock         Recommendation = "block"
	RecommendationNeedsRevision Recommendation = "needs-revision"
)

// Confidence qualifies how clear-cut the synthesized recommendation is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Synthesis is the advisory meta-evaluation shown to the human reviewer.
// It never changes the aggregate score or pass flag.
type Synthesis struct {
	Recommendation Recommendation `json:"recommendation" validate:"required,oneof=proceed block needs-revision"`
	Confidence     Confidence     `json:"confidence"     validate:"required,oneof=high medium low"`
	Concerns       []string       `json:"concerns"`
	Strengths      []string       `json:"strengths"`
	Rationale      string         `json:"rationale"`
}
