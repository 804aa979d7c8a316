// Package tasks provides the built-in evaluation tasks. Each task is a pure
// function of the content snapshot (the accuracy task additionally consults
// the knowledge base) and scores a fixed list of named checks.
package tasks

import (
	"fmt"

	"github.com/medgate/medgate/pkg/models"
)

// Task identifiers. These match the identifiers the routing rules reference.
const (
	MetadataTaskID   = "metadata"
	EditorialTaskID  = "editorial"
	ComplianceTaskID = "compliance"
	AccuracyTaskID   = "accuracy"
	EmptyTagTaskID   = "emptytag"
)

// checklist accumulates named check outcomes and turns them into a result.
// The score is the fraction of checks that passed; the task passes when the
// score reaches the configured minimum.
type checklist struct {
	passed          []string
	issues          []string
	recommendations []string
}

func (c *checklist) check(name string, ok bool, issue, recommendation string) {
	if ok {
		c.passed = append(c.passed, name)

		return
	}

	c.issues = append(c.issues, issue)

	if recommendation != "" {
		c.recommendations = append(c.recommendations, recommendation)
	}
}

func (c *checklist) result(taskID string, minScore float64) *models.TaskResult {
	total := len(c.passed) + len(c.issues)

	score := 1.0
	if total > 0 {
		score = float64(len(c.passed)) / float64(total)
	}

	if c.passed == nil {
		c.passed = []string{}
	}

	if c.issues == nil {
		c.issues = []string{}
	}

	if c.recommendations == nil {
		c.recommendations = []string{}
	}

	return &models.TaskResult{
		TaskID:          taskID,
		Passed:          score >= minScore,
		Score:           score,
		PassedChecks:    c.passed,
		Issues:          c.issues,
		Recommendations: c.recommendations,
	}
}

// minScoreSchema is the shared config schema: every built-in task accepts an
// optional pass threshold.
func minScoreSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"min_score": map[string]any{
				"type":        "number",
				"minimum":     0,
				"maximum":     1,
				"description": "Minimum score for the task to pass",
			},
		},
		"additionalProperties": false,
	}
}

func minScoreFromConfig(config map[string]any, fallback float64) (float64, error) {
	raw, ok := config["min_score"]
	if !ok {
		return fallback, nil
	}

	value, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("min_score must be a number, got %T", raw)
	}

	return value, nil
}
