package models

import "time"

// ContentSnapshot is the immutable content/context assembled before dispatch.
// It is shared read-only by all concurrently running tasks; no task may
// mutate it.
type ContentSnapshot struct {
	URL             string            `json:"url" validate:"required,url"`
	FetchedAt       time.Time         `json:"fetched_at"`
	Title           string            `json:"title"`
	MetaDescription string            `json:"meta_description"`
	CanonicalURL    string            `json:"canonical_url"`
	OGTags          map[string]string `json:"og_tags"`
	JSONLDTypes     []string          `json:"json_ld_types"`
	Headings        []string          `json:"headings"`
	BodyText        string            `json:"body_text"`
	WordCount       int               `json:"word_count"`
	EmptyTagCount   int               `json:"empty_tag_count"`
}
