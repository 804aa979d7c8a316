package fetch

import (
	"encoding/json"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/medgate/medgate/pkg/models"
)

var (
	titleRe     = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	metaTagRe   = regexp.MustCompile(`(?is)<meta\s+[^>]*>`)
	attrRe      = regexp.MustCompile(`(?is)(name|property|content|rel|href)\s*=\s*"([^"]*)"`)
	linkTagRe   = regexp.MustCompile(`(?is)<link\s+[^>]*>`)
	jsonLDRe    = regexp.MustCompile(`(?is)<script[^>]*type\s*=\s*"application/ld\+json"[^>]*>(.*?)</script>`)
	headingRe   = regexp.MustCompile(`(?is)<h[1-6][^>]*>(.*?)</h[1-6]>`)
	emptyTagRe  = regexp.MustCompile(`(?is)<(p|div|span|li|h[1-6])[^>]*>\s*(&nbsp;)?\s*</\s*(p|div|span|li|h[1-6])\s*>`)
	scriptRe    = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	anyTagRe    = regexp.MustCompile(`(?s)<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Extract parses rawHTML into a snapshot. The extraction is tolerant by
// construction: absent elements produce empty fields, never errors, because
// the tasks themselves decide whether an absence is a defect.
func Extract(url, rawHTML string) *models.ContentSnapshot {
	snapshot := &models.ContentSnapshot{
		URL:         url,
		FetchedAt:   time.Now().UTC(),
		OGTags:      map[string]string{},
		JSONLDTypes: []string{},
		Headings:    []string{},
	}

	if m := titleRe.FindStringSubmatch(rawHTML); m != nil {
		snapshot.Title = cleanText(m[1])
	}

	for _, tag := range metaTagRe.FindAllString(rawHTML, -1) {
		attrs := tagAttrs(tag)

		switch {
		case attrs["name"] == "description":
			snapshot.MetaDescription = cleanText(attrs["content"])
		case strings.HasPrefix(attrs["property"], "og:"):
			snapshot.OGTags[attrs["property"]] = cleanText(attrs["content"])
		}
	}

	for _, tag := range linkTagRe.FindAllString(rawHTML, -1) {
		attrs := tagAttrs(tag)
		if strings.EqualFold(attrs["rel"], "canonical") {
			snapshot.CanonicalURL = attrs["href"]
		}
	}

	for _, m := range jsonLDRe.FindAllStringSubmatch(rawHTML, -1) {
		snapshot.JSONLDTypes = append(snapshot.JSONLDTypes, jsonLDTypes(m[1])...)
	}

	for _, m := range headingRe.FindAllStringSubmatch(rawHTML, -1) {
		if text := cleanText(m[1]); text != "" {
			snapshot.Headings = append(snapshot.Headings, text)
		}
	}

	snapshot.EmptyTagCount = len(emptyTagRe.FindAllString(rawHTML, -1))

	snapshot.BodyText = cleanText(scriptRe.ReplaceAllString(rawHTML, " "))
	snapshot.WordCount = len(strings.Fields(snapshot.BodyText))

	return snapshot
}

func tagAttrs(tag string) map[string]string {
	attrs := map[string]string{}

	for _, m := range attrRe.FindAllStringSubmatch(tag, -1) {
		attrs[strings.ToLower(m[1])] = m[2]
	}

	return attrs
}

// jsonLDTypes pulls @type values from a JSON-LD block, handling both a single
// object and an array of objects. Malformed JSON yields no types.
func jsonLDTypes(raw string) []string {
	types := []string{}

	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return types
	}

	var collect func(node any)
	collect = func(node any) {
		switch v := node.(type) {
		case map[string]any:
			if t, ok := v["@type"].(string); ok {
				types = append(types, t)
			}
		case []any:
			for _, item := range v {
				collect(item)
			}
		}
	}

	collect(decoded)

	return types
}

func cleanText(fragment string) string {
	text := anyTagRe.ReplaceAllString(fragment, " ")
	text = html.UnescapeString(text)
	text = whitespaceRe.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
