package knowledge

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
)

// MemoryStore is an in-process [Store] for tests and small
// deployments. Search is a linear scan with cosine similarity.
type MemoryStore struct {
	mu        sync.RWMutex
	documents []Document
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Add(ctx context.Context, docs ...Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("document %q has no embedding", doc.ID)
		}
		s.documents = append(s.documents, doc)
	}
	return nil
}

func (s *MemoryStore) Search(ctx context.Context, embedding []float64, limit int, minSimilarity float64) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]SearchResult, 0, len(s.documents))
	for _, doc := range s.documents {
		similarity := cosineSimilarity(embedding, doc.Embedding)
		if similarity < minSimilarity {
			continue
		}
		results = append(results, SearchResult{Document: doc, Similarity: similarity})
	}

	slices.SortFunc(results, func(a, b SearchResult) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		default:
			return 0
		}
	})

	if limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents), nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
