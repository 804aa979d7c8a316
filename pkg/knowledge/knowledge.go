// Package knowledge provides an in-memory keyword-scored knowledge base.
// Entries are curated reference statements about medical topics; Search ranks
// them by term overlap with the query.
package knowledge

import (
	"context"
	"sort"
	"strings"

	"github.com/medgate/medgate/pkg/protocol"
)

type Base struct {
	entries []protocol.KnowledgeEntry
}

func NewBase(entries []protocol.KnowledgeEntry) *Base {
	return &Base{entries: entries}
}

// Search scores every entry by the fraction of query terms occurring in its
// topic or text and returns the top matches. Entries with no overlap are
// omitted.
func (b *Base) Search(_ context.Context, query string, limit int) ([]protocol.KnowledgeEntry, error) {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return []protocol.KnowledgeEntry{}, nil
	}

	scored := make([]protocol.KnowledgeEntry, 0, len(b.entries))

	for _, entry := range b.entries {
		haystack := strings.ToLower(entry.Topic + " " + entry.Text)

		matched := 0

		for _, term := range terms {
			if strings.Contains(haystack, term) {
				matched++
			}
		}

		if matched == 0 {
			continue
		}

		entry.Score = float64(matched) / float64(len(terms))
		scored = append(scored, entry)
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	return scored, nil
}

func queryTerms(query string) []string {
	terms := []string{}

	for _, word := range strings.Fields(strings.ToLower(query)) {
		word = strings.Trim(word, ".,;:!?()\"'")
		if len(word) >= 4 {
			terms = append(terms, word)
		}
	}

	return terms
}
