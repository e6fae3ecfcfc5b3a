package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// RetrievalService orchestrates query embedding, vector search,
// threshold filtering, and top-K selection.
type RetrievalService struct {
	vectorStore driven.VectorStore
	embedder    driven.EmbeddingService
	topK        int
	overfetch   int
	minScore    float64
}

// NewRetrievalService creates a retrieval service tuned by the given
// settings.
func NewRetrievalService(
	vectorStore driven.VectorStore,
	embedder driven.EmbeddingService,
	settings domain.Settings,
) *RetrievalService {
	return &RetrievalService{
		vectorStore: vectorStore,
		embedder:    embedder,
		topK:        settings.TopK,
		overfetch:   settings.OverfetchFactor,
		minScore:    settings.MinScore,
	}
}

// Retrieve embeds the query and returns the top-K chunks from the
// selected documents, best first. An empty selection returns no
// results without calling the embedding service; there is no implicit
// search-everything fallback.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, selectedIDs []string) ([]domain.ScoredChunk, error) {
	if len(selectedIDs) == 0 {
		logger.Debug("Retrieve: no documents selected, skipping search")
		return nil, nil
	}
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	// Overfetch so the score threshold has candidates to discard.
	candidates, err := s.vectorStore.Search(ctx, vector, s.topK*s.overfetch, selectedIDs)
	if err != nil {
		return nil, err
	}

	results := make([]domain.ScoredChunk, 0, s.topK)
	for _, c := range candidates {
		if c.Score < s.minScore {
			continue
		}
		results = append(results, c)
		if len(results) == s.topK {
			break
		}
	}

	logger.Debug("Retrieve: %d candidates, %d above threshold %.2f",
		len(candidates), len(results), s.minScore)
	return results, nil
}
