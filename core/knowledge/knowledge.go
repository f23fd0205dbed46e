// Package knowledge provides the vector-backed knowledge base that
// call tools query for policy and coverage information. A [Store]
// holds embedded documents; [Engine] layers query embedding and an
// optional Redis hot cache on top of one.
package knowledge

import "context"

const (
	// DefaultLimit is the number of results returned when the caller
	// does not ask for a specific amount.
	DefaultLimit = 5

	// DefaultMinSimilarity filters out results too far from the query
	// to be useful in a live call.
	DefaultMinSimilarity = 0.7
)

// Document is one entry in the knowledge base.
type Document struct {
	ID        string            `json:"id" bson:"_id"`
	Content   string            `json:"content" bson:"content"`
	Category  string            `json:"category,omitempty" bson:"category,omitempty"`
	Embedding []float64         `json:"embedding,omitempty" bson:"embedding"`
	Metadata  map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// SearchResult pairs a document with its similarity to the query,
// where 1 is an exact match.
type SearchResult struct {
	Document   Document `json:"document" bson:"document"`
	Similarity float64  `json:"similarity" bson:"similarity"`
}

// Store persists embedded documents and retrieves the ones nearest a
// query embedding.
type Store interface {
	Add(ctx context.Context, docs ...Document) error
	Search(ctx context.Context, embedding []float64, limit int, minSimilarity float64) ([]SearchResult, error)
	Count(ctx context.Context) (int, error)
}

// Embedder turns text into a vector embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}
