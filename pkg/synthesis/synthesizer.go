// Package synthesis produces the advisory recommendation shown to the human
// reviewer alongside the aggregate. It is a decision aid only and never
// changes the aggregate score or pass flag.
package synthesis

import (
	"context"
	"fmt"

	"github.com/medgate/medgate/pkg/models"
)

// Thresholds separating clear-cut outcomes from borderline ones.
const (
	proceedScore = 0.85
	blockScore   = 0.5
)

// Synthesizer is the built-in heuristic implementation of
// protocol.Synthesizer. Deployments that front an external judgment service
// plug their own implementation into the engine instead.
type Synthesizer struct{}

func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

func (s *Synthesizer) Synthesize(_ context.Context, run *models.Run) (*models.Synthesis, error) {
	if len(run.Results) == 0 {
		return &models.Synthesis{
			Recommendation: models.RecommendationBlock,
			Confidence:     models.ConfidenceLow,
			Concerns:       []string{"no task results available to evaluate"},
			Strengths:      []string{},
			Rationale:      "Cannot recommend publication without any task results.",
		}, nil
	}

	concerns := make([]string, 0)
	strengths := make([]string, 0)
	failing := 0

	for _, result := range run.Results {
		if result.Passed {
			strengths = append(strengths, fmt.Sprintf("%s: passed with score %.2f", result.TaskID, result.Score))
		} else {
			failing++

			for _, issue := range result.Issues {
				concerns = append(concerns, fmt.Sprintf("%s: %s", result.TaskID, issue))
			}
		}
	}

	for _, errMsg := range run.Errors {
		concerns = append(concerns, errMsg)
	}

	score := 0.0
	if run.AggregateScore != nil {
		score = *run.AggregateScore
	}

	recommendation, confidence := classify(score, failing, len(run.Results), len(run.Errors))

	return &models.Synthesis{
		Recommendation: recommendation,
		Confidence:     confidence,
		Concerns:       concerns,
		Strengths:      strengths,
		Rationale: fmt.Sprintf(
			"%d of %d tasks passed with aggregate score %.3f; %d error(s) recorded.",
			len(run.Results)-failing, len(run.Results), score, len(run.Errors),
		),
	}, nil
}

func classify(score float64, failing, total, errs int) (models.Recommendation, models.Confidence) {
	switch {
	case failing == 0 && errs == 0 && score >= proceedScore:
		return models.RecommendationProceed, models.ConfidenceHigh
	case failing == 0 && score >= proceedScore:
		// Everything available passed, but some tasks never reported.
		return models.RecommendationProceed, models.ConfidenceMedium
	case failing == total || score < blockScore:
		return models.RecommendationBlock, models.ConfidenceHigh
	case failing > 0:
		return models.RecommendationNeedsRevision, models.ConfidenceMedium
	default:
		return models.RecommendationNeedsRevision, models.ConfidenceLow
	}
}
