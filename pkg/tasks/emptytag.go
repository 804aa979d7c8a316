package tasks

import (
	"context"
	"fmt"

	"github.com/medgate/medgate/pkg/models"
	"github.com/medgate/medgate/pkg/protocol"
)

// emptyTagTolerance is the count at which the score bottoms out at zero.
const emptyTagTolerance = 10

// EmptyTagTask flags empty HTML elements, a recurring authoring defect in
// Health Information Library pages. Zero empty tags scores 1.0; the score
// degrades linearly down to zero at the tolerance.
type EmptyTagTask struct {
	minScore float64
}

func (t *EmptyTagTask) ID() string {
	return EmptyTagTaskID
}

func (t *EmptyTagTask) Evaluate(_ context.Context, content *models.ContentSnapshot) (*models.TaskResult, error) {
	count := content.EmptyTagCount

	score := 1.0 - float64(count)/float64(emptyTagTolerance)
	if score < 0 {
		score = 0
	}

	result := &models.TaskResult{
		TaskID:          t.ID(),
		Passed:          score >= t.minScore,
		Score:           score,
		PassedChecks:    []string{},
		Issues:          []string{},
		Recommendations: []string{},
	}

	if count == 0 {
		result.PassedChecks = append(result.PassedChecks, "no_empty_tags")
	} else {
		result.Issues = append(result.Issues, fmt.Sprintf("page contains %d empty HTML elements", count))
		result.Recommendations = append(result.Recommendations, "remove empty elements left behind by the authoring tool")
	}

	return result, nil
}

type EmptyTagTaskFactory struct{}

func (f *EmptyTagTaskFactory) ID() string {
	return EmptyTagTaskID
}

func (f *EmptyTagTaskFactory) Schema() map[string]any {
	return minScoreSchema()
}

func (f *EmptyTagTaskFactory) Create(config map[string]any) (protocol.Task, error) {
	minScore, err := minScoreFromConfig(config, 1.0)
	if err != nil {
		return nil, err
	}

	return &EmptyTagTask{minScore: minScore}, nil
}
