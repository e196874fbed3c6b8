package retrieval

import "context"

// Document is one retrieved passage with its relevance metadata.
type Document struct {
	Content string  `json:"content"`
	Source  string  `json:"source,omitempty"`
	Score   float64 `json:"score"`
}

// Searcher is the retrieval boundary. Implementations perform semantic
// search over the admissions corpus and may return an empty slice. Calls are
// bounded by the caller's context deadline.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]Document, error)
}
