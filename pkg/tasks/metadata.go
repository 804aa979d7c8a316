package tasks

import (
	"context"

	"github.com/medgate/medgate/pkg/models"
	"github.com/medgate/medgate/pkg/protocol"
)

const (
	titleMinLen = 10
	titleMaxLen = 70
	descMinLen  = 50
	descMaxLen  = 160
)

// MetadataTask checks the SEO and structured-data surface of a page: title
// and description lengths, canonical URL, Open Graph tags and JSON-LD.
type MetadataTask struct {
	minScore float64
}

func (t *MetadataTask) ID() string {
	return MetadataTaskID
}

func (t *MetadataTask) Evaluate(_ context.Context, content *models.ContentSnapshot) (*models.TaskResult, error) {
	var c checklist

	c.check("title_present", content.Title != "",
		"page has no title",
		"add a descriptive <title> element")

	if content.Title != "" {
		c.check("title_length", len(content.Title) >= titleMinLen && len(content.Title) <= titleMaxLen,
			"title length is outside the 10-70 character range",
			"rewrite the title to fit within 10-70 characters")
	}

	c.check("meta_description_present", content.MetaDescription != "",
		"page has no meta description",
		"add a meta description summarizing the page")

	if content.MetaDescription != "" {
		c.check("meta_description_length", len(content.MetaDescription) >= descMinLen && len(content.MetaDescription) <= descMaxLen,
			"meta description length is outside the 50-160 character range",
			"rewrite the meta description to fit within 50-160 characters")
	}

	c.check("canonical_url_present", content.CanonicalURL != "",
		"page has no canonical URL",
		"add a rel=canonical link")

	c.check("og_title_present", content.OGTags["og:title"] != "",
		"page has no og:title tag",
		"add Open Graph tags for social sharing")

	c.check("og_description_present", content.OGTags["og:description"] != "",
		"page has no og:description tag",
		"")

	c.check("structured_data_present", len(content.JSONLDTypes) > 0,
		"page has no JSON-LD structured data",
		"add schema.org JSON-LD markup, MedicalWebPage where applicable")

	return c.result(t.ID(), t.minScore), nil
}

type MetadataTaskFactory struct{}

func (f *MetadataTaskFactory) ID() string {
	return MetadataTaskID
}

func (f *MetadataTaskFactory) Schema() map[string]any {
	return minScoreSchema()
}

func (f *MetadataTaskFactory) Create(config map[string]any) (protocol.Task, error) {
	minScore, err := minScoreFromConfig(config, 0.75)
	if err != nil {
		return nil, err
	}

	return &MetadataTask{minScore: minScore}, nil
}
