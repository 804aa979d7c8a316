package protocol

import "context"

// KnowledgeEntry is one retrievable statement from the knowledge base.
type KnowledgeEntry struct {
	Topic string  `json:"topic"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// KnowledgeBase is the lookup used by the accuracy task. The core depends
// only on this interface, never on the retrieval algorithm behind it.
type KnowledgeBase interface {
	Search(ctx context.Context, query string, limit int) ([]KnowledgeEntry, error)
}
