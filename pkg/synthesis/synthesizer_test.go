package synthesis_test

import (
	"context"
	"testing"

	"github.com/medgate/medgate/pkg/models"
	"github.com/medgate/medgate/pkg/synthesis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWith(score float64, results []models.TaskResult, errs []string) *models.Run {
	run := models.NewRun("run-1", "https://example.org/page", "tester")
	run.Results = results
	run.Errors = errs
	run.AggregateScore = &score

	return run
}

func TestSynthesize_ProceedHighConfidence(t *testing.T) {
	t.Parallel()

	run := runWith(0.95, []models.TaskResult{
		{TaskID: "metadata", Passed: true, Score: 0.95},
		{TaskID: "editorial", Passed: true, Score: 0.95},
	}, nil)

	out, err := synthesis.NewSynthesizer().Synthesize(context.Background(), run)
	require.NoError(t, err)

	assert.Equal(t, models.RecommendationProceed, out.Recommendation)
	assert.Equal(t, models.ConfidenceHigh, out.Confidence)
	assert.Empty(t, out.Concerns)
	assert.Len(t, out.Strengths, 2)
	assert.NotEmpty(t, out.Rationale)
}

func TestSynthesize_BlockOnLowScore(t *testing.T) {
	t.Parallel()

	run := runWith(0.3, []models.TaskResult{
		{TaskID: "compliance", Passed: false, Score: 0.3, Issues: []string{"prohibited claim"}},
	}, nil)

	out, err := synthesis.NewSynthesizer().Synthesize(context.Background(), run)
	require.NoError(t, err)

	assert.Equal(t, models.RecommendationBlock, out.Recommendation)
	assert.Equal(t, models.ConfidenceHigh, out.Confidence)
	assert.Contains(t, out.Concerns, "compliance: prohibited claim")
}

func TestSynthesize_NeedsRevisionOnPartialFailure(t *testing.T) {
	t.Parallel()

	run := runWith(0.7, []models.TaskResult{
		{TaskID: "metadata", Passed: true, Score: 0.9},
		{TaskID: "editorial", Passed: false, Score: 0.5, Issues: []string{"too short"}},
	}, nil)

	out, err := synthesis.NewSynthesizer().Synthesize(context.Background(), run)
	require.NoError(t, err)

	assert.Equal(t, models.RecommendationNeedsRevision, out.Recommendation)
	assert.Equal(t, models.ConfidenceMedium, out.Confidence)
}

func TestSynthesize_TaskErrorsLowerConfidence(t *testing.T) {
	t.Parallel()

	run := runWith(0.9, []models.TaskResult{
		{TaskID: "metadata", Passed: true, Score: 0.9},
	}, []string{"accuracy: timed out"})

	out, err := synthesis.NewSynthesizer().Synthesize(context.Background(), run)
	require.NoError(t, err)

	assert.Equal(t, models.RecommendationProceed, out.Recommendation)
	assert.Equal(t, models.ConfidenceMedium, out.Confidence)
	assert.Contains(t, out.Concerns, "accuracy: timed out")
}

func TestSynthesize_NoResultsBlocks(t *testing.T) {
	t.Parallel()

	run := models.NewRun("run-1", "https://example.org/page", "tester")

	out, err := synthesis.NewSynthesizer().Synthesize(context.Background(), run)
	require.NoError(t, err)

	assert.Equal(t, models.RecommendationBlock, out.Recommendation)
	assert.Equal(t, models.ConfidenceLow, out.Confidence)
}
