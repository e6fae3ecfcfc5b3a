package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore
// using brute-force cosine similarity. Mutations replace a document's
// chunk set wholesale under the write lock, so concurrent searches see
// either the old set or the new one, never a mix.
type VectorStore struct {
	mu     sync.RWMutex
	chunks map[string][]domain.Chunk
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		chunks: make(map[string][]domain.Chunk),
	}
}

// Upsert atomically replaces all chunks for the document. Chunks
// without embeddings are unsearchable and are dropped.
func (s *VectorStore) Upsert(_ context.Context, documentID string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	kept := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.HasEmbedding() {
			kept = append(kept, c)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[documentID] = kept
	return nil
}

// Remove deletes all chunks for the document.
func (s *VectorStore) Remove(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chunks, documentID)
	return nil
}

// Search returns up to limit chunks by descending cosine similarity.
// With a non-empty restrictTo, chunks outside those documents are
// excluded before scoring.
func (s *VectorStore) Search(_ context.Context, query []float32, limit int, restrictTo []string) ([]domain.ScoredChunk, error) {
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []domain.ScoredChunk
	if len(restrictTo) > 0 {
		for _, docID := range restrictTo {
			results = score(query, s.chunks[docID], results)
		}
	} else {
		for docID := range s.chunks {
			results = score(query, s.chunks[docID], results)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Close releases resources.
func (s *VectorStore) Close() error {
	return nil
}

// score appends the scored chunks to dst.
func score(query []float32, chunks []domain.Chunk, dst []domain.ScoredChunk) []domain.ScoredChunk {
	for _, c := range chunks {
		dst = append(dst, domain.ScoredChunk{
			Chunk: c,
			Score: domain.CosineSimilarity(query, c.Embedding),
		})
	}
	return dst
}
