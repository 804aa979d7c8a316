package tasks_test

import (
	"context"
	"strings"
	"testing"

	"github.com/medgate/medgate/pkg/knowledge"
	"github.com/medgate/medgate/pkg/models"
	"github.com/medgate/medgate/pkg/protocol"
	"github.com/medgate/medgate/pkg/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wellFormedSnapshot() *models.ContentSnapshot {
	body := strings.Repeat("Drinking water regularly supports good health. ", 60) +
		"If symptoms persist, talk to your doctor or another healthcare provider."

	return &models.ContentSnapshot{
		URL:             "https://example.org/healthy-lifestyle/nutrition/water",
		Title:           "Water: How much should you drink?",
		MetaDescription: "Learn how much water you should drink every day and how hydration supports your overall health.",
		CanonicalURL:    "https://example.org/healthy-lifestyle/nutrition/water",
		OGTags: map[string]string{
			"og:title":       "Water: How much should you drink?",
			"og:description": "Hydration basics",
		},
		JSONLDTypes:   []string{"MedicalWebPage"},
		Headings:      []string{"How much water do you need", "Signs of dehydration"},
		BodyText:      body,
		WordCount:     len(strings.Fields(body)),
		EmptyTagCount: 0,
	}
}

func createTask(t *testing.T, factory protocol.TaskFactory) protocol.Task {
	t.Helper()

	task, err := factory.Create(map[string]any{})
	require.NoError(t, err)

	return task
}

func TestMetadataTask(t *testing.T) {
	t.Parallel()

	task := createTask(t, &tasks.MetadataTaskFactory{})

	t.Run("well formed page passes", func(t *testing.T) {
		t.Parallel()

		result, err := task.Evaluate(context.Background(), wellFormedSnapshot())
		require.NoError(t, err)

		assert.Equal(t, tasks.MetadataTaskID, result.TaskID)
		assert.True(t, result.Passed)
		assert.InDelta(t, 1.0, result.Score, 0.0001)
		assert.Empty(t, result.Issues)
	})

	t.Run("bare page fails", func(t *testing.T) {
		t.Parallel()

		result, err := task.Evaluate(context.Background(), &models.ContentSnapshot{URL: "https://example.org/x"})
		require.NoError(t, err)

		assert.False(t, result.Passed)
		assert.InDelta(t, 0.0, result.Score, 0.0001)
		assert.NotEmpty(t, result.Recommendations)
	})
}

func TestEditorialTask(t *testing.T) {
	t.Parallel()

	task := createTask(t, &tasks.EditorialTaskFactory{})

	t.Run("substantial article passes", func(t *testing.T) {
		t.Parallel()

		result, err := task.Evaluate(context.Background(), wellFormedSnapshot())
		require.NoError(t, err)

		assert.True(t, result.Passed)
	})

	t.Run("thin content flagged", func(t *testing.T) {
		t.Parallel()

		snapshot := wellFormedSnapshot()
		snapshot.BodyText = "Short text."
		snapshot.WordCount = 2
		snapshot.Headings = nil

		result, err := task.Evaluate(context.Background(), snapshot)
		require.NoError(t, err)

		assert.False(t, result.Passed)
		assert.Contains(t, result.Issues, "article body is shorter than 300 words")
		assert.Contains(t, result.Issues, "article has no section headings")
	})
}

func TestComplianceTask(t *testing.T) {
	t.Parallel()

	task := createTask(t, &tasks.ComplianceTaskFactory{})

	t.Run("compliant content passes", func(t *testing.T) {
		t.Parallel()

		result, err := task.Evaluate(context.Background(), wellFormedSnapshot())
		require.NoError(t, err)

		assert.True(t, result.Passed)
		assert.InDelta(t, 1.0, result.Score, 0.0001)
	})

	t.Run("prohibited claim fails", func(t *testing.T) {
		t.Parallel()

		snapshot := wellFormedSnapshot()
		snapshot.BodyText += " This treatment is a miracle cure."

		result, err := task.Evaluate(context.Background(), snapshot)
		require.NoError(t, err)

		assert.False(t, result.Passed, "compliance tolerates no prohibited claims")
		assert.NotEmpty(t, result.Issues)
	})
}

func TestAccuracyTask(t *testing.T) {
	t.Parallel()

	kb := knowledge.NewBase(knowledge.DefaultEntries())
	task := createTask(t, tasks.NewAccuracyTaskFactory(kb))

	t.Run("uncovered topic passes vacuously", func(t *testing.T) {
		t.Parallel()

		snapshot := wellFormedSnapshot()
		snapshot.Title = "Zzz"
		snapshot.Headings = nil

		result, err := task.Evaluate(context.Background(), snapshot)
		require.NoError(t, err)

		assert.True(t, result.Passed)
		assert.Contains(t, result.PassedChecks, "no_reference_coverage")
	})

	t.Run("corroborated content passes", func(t *testing.T) {
		t.Parallel()

		snapshot := wellFormedSnapshot()
		snapshot.Title = "Hydration and water"
		snapshot.Headings = []string{"Hydration"}
		snapshot.BodyText = "Adults should drink water regularly throughout the day. Needs vary with activity and climate."

		result, err := task.Evaluate(context.Background(), snapshot)
		require.NoError(t, err)

		assert.True(t, result.Passed)
	})
}

func TestEmptyTagTask(t *testing.T) {
	t.Parallel()

	task := createTask(t, &tasks.EmptyTagTaskFactory{})

	t.Run("clean page passes", func(t *testing.T) {
		t.Parallel()

		result, err := task.Evaluate(context.Background(), wellFormedSnapshot())
		require.NoError(t, err)

		assert.True(t, result.Passed)
		assert.InDelta(t, 1.0, result.Score, 0.0001)
	})

	t.Run("empty tags degrade the score", func(t *testing.T) {
		t.Parallel()

		snapshot := wellFormedSnapshot()
		snapshot.EmptyTagCount = 4

		result, err := task.Evaluate(context.Background(), snapshot)
		require.NoError(t, err)

		assert.False(t, result.Passed)
		assert.InDelta(t, 0.6, result.Score, 0.0001)
	})
}

func TestFactoryRejectsBadMinScore(t *testing.T) {
	t.Parallel()

	_, err := (&tasks.MetadataTaskFactory{}).Create(map[string]any{"min_score": "high"})

	require.Error(t, err)
}
