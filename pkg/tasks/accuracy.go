package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/medgate/medgate/pkg/models"
	"github.com/medgate/medgate/pkg/protocol"
)

const accuracySearchLimit = 5

// AccuracyTask cross-checks page content against the knowledge base. Each
// retrieved entry whose key terms appear in the body counts as corroborated;
// the score is the corroborated fraction. A page whose topic has no knowledge
// base coverage passes vacuously with a note.
type AccuracyTask struct {
	knowledge protocol.KnowledgeBase
	minScore  float64
}

func (t *AccuracyTask) ID() string {
	return AccuracyTaskID
}

func (t *AccuracyTask) Evaluate(ctx context.Context, content *models.ContentSnapshot) (*models.TaskResult, error) {
	query := content.Title
	if len(content.Headings) > 0 {
		query += " " + strings.Join(content.Headings, " ")
	}

	entries, err := t.knowledge.Search(ctx, query, accuracySearchLimit)
	if err != nil {
		return nil, fmt.Errorf("knowledge base search failed: %w", err)
	}

	if len(entries) == 0 {
		return &models.TaskResult{
			TaskID:          t.ID(),
			Passed:          true,
			Score:           1.0,
			PassedChecks:    []string{"no_reference_coverage"},
			Issues:          []string{},
			Recommendations: []string{"no knowledge base entries cover this topic, accuracy was not cross-checked"},
		}, nil
	}

	var c checklist

	body := strings.ToLower(content.BodyText)

	for _, entry := range entries {
		name := "corroborated_" + strings.ReplaceAll(strings.ToLower(entry.Topic), " ", "_")

		c.check(name, corroborates(body, entry.Text),
			fmt.Sprintf("body does not reflect the reference statement on '%s'", entry.Topic),
			fmt.Sprintf("review the section on '%s' against current references", entry.Topic))
	}

	return c.result(t.ID(), t.minScore), nil
}

// corroborates reports whether the body mentions at least half of the
// reference statement's significant terms.
func corroborates(body, statement string) bool {
	terms := significantTerms(statement)
	if len(terms) == 0 {
		return true
	}

	matched := 0

	for _, term := range terms {
		if strings.Contains(body, term) {
			matched++
		}
	}

	return matched*2 >= len(terms)
}

func significantTerms(text string) []string {
	terms := []string{}

	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:!?()\"'")
		if len(word) >= 5 {
			terms = append(terms, word)
		}
	}

	return terms
}

type AccuracyTaskFactory struct {
	knowledge protocol.KnowledgeBase
}

func NewAccuracyTaskFactory(knowledge protocol.KnowledgeBase) *AccuracyTaskFactory {
	return &AccuracyTaskFactory{knowledge: knowledge}
}

func (f *AccuracyTaskFactory) ID() string {
	return AccuracyTaskID
}

func (f *AccuracyTaskFactory) Schema() map[string]any {
	return minScoreSchema()
}

func (f *AccuracyTaskFactory) Create(config map[string]any) (protocol.Task, error) {
	minScore, err := minScoreFromConfig(config, 0.6)
	if err != nil {
		return nil, err
	}

	return &AccuracyTask{knowledge: f.knowledge, minScore: minScore}, nil
}
