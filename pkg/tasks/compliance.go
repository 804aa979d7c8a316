package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/medgate/medgate/pkg/models"
	"github.com/medgate/medgate/pkg/protocol"
)

// prohibitedClaims are phrases health content must never make.
var prohibitedClaims = []string{
	"miracle cure",
	"guaranteed to cure",
	"100% effective",
	"clinically proven to cure",
	"no side effects whatsoever",
}

// consultationPhrases signal that the page directs readers to professional
// care instead of self-treatment.
var consultationPhrases = []string{
	"talk to your doctor",
	"consult your doctor",
	"healthcare provider",
	"health care provider",
	"medical professional",
	"seek medical",
}

// ComplianceTask checks regulatory and policy constraints on medical claims.
type ComplianceTask struct {
	minScore float64
}

func (t *ComplianceTask) ID() string {
	return ComplianceTaskID
}

func (t *ComplianceTask) Evaluate(_ context.Context, content *models.ContentSnapshot) (*models.TaskResult, error) {
	var c checklist

	body := strings.ToLower(content.BodyText)

	for _, claim := range prohibitedClaims {
		c.check("no_claim_"+strings.ReplaceAll(claim, " ", "_"), !strings.Contains(body, claim),
			fmt.Sprintf("body contains the prohibited claim '%s'", claim),
			"remove or qualify the absolute medical claim")
	}

	c.check("professional_consultation_language", containsAny(body, consultationPhrases),
		"body never directs readers to a healthcare professional",
		"add guidance to consult a healthcare provider")

	c.check("no_pricing_language", !containsAny(body, []string{"buy now", "order today", "limited time offer"}),
		"body contains promotional sales language",
		"remove promotional calls to action from medical content")

	return c.result(t.ID(), t.minScore), nil
}

type ComplianceTaskFactory struct{}

func (f *ComplianceTaskFactory) ID() string {
	return ComplianceTaskID
}

func (f *ComplianceTaskFactory) Schema() map[string]any {
	return minScoreSchema()
}

func (f *ComplianceTaskFactory) Create(config map[string]any) (protocol.Task, error) {
	minScore, err := minScoreFromConfig(config, 1.0)
	if err != nil {
		return nil, err
	}

	return &ComplianceTask{minScore: minScore}, nil
}
