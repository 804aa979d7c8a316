package tasks

import (
	"context"
	"strings"

	"github.com/medgate/medgate/pkg/models"
	"github.com/medgate/medgate/pkg/protocol"
)

const (
	editorialMinWords       = 300
	editorialMaxSentenceLen = 30
)

// EditorialTask checks readability and structure: article length, heading
// structure, sentence length and tone.
type EditorialTask struct {
	minScore float64
}

func (t *EditorialTask) ID() string {
	return EditorialTaskID
}

func (t *EditorialTask) Evaluate(_ context.Context, content *models.ContentSnapshot) (*models.TaskResult, error) {
	var c checklist

	c.check("sufficient_length", content.WordCount >= editorialMinWords,
		"article body is shorter than 300 words",
		"expand the article to cover the topic in depth")

	c.check("has_headings", len(content.Headings) > 0,
		"article has no section headings",
		"break the article into sections with descriptive headings")

	c.check("sentence_length", averageSentenceLength(content.BodyText) <= editorialMaxSentenceLen,
		"average sentence length exceeds 30 words",
		"shorten long sentences to improve readability")

	c.check("title_not_shouting", content.Title == "" || content.Title != strings.ToUpper(content.Title) || !strings.ContainsAny(content.Title, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"),
		"title is written in all capitals",
		"use sentence case in the title")

	c.check("no_placeholder_text", !containsAny(strings.ToLower(content.BodyText), []string{"lorem ipsum", "tbd", "[placeholder]"}),
		"body contains placeholder text",
		"replace placeholder text with final copy")

	return c.result(t.ID(), t.minScore), nil
}

func averageSentenceLength(text string) float64 {
	if text == "" {
		return 0
	}

	sentences := 0
	words := len(strings.Fields(text))

	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			sentences++
		}
	}

	if sentences == 0 {
		sentences = 1
	}

	return float64(words) / float64(sentences)
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}

	return false
}

type EditorialTaskFactory struct{}

func (f *EditorialTaskFactory) ID() string {
	return EditorialTaskID
}

func (f *EditorialTaskFactory) Schema() map[string]any {
	return minScoreSchema()
}

func (f *EditorialTaskFactory) Create(config map[string]any) (protocol.Task, error) {
	minScore, err := minScoreFromConfig(config, 0.8)
	if err != nil {
		return nil, err
	}

	return &EditorialTask{minScore: minScore}, nil
}
