package driven

import (
	"context"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// VectorStore persists chunks with their embeddings and performs
// similarity search over them.
//
// Mutations are serialized: a concurrent Search never observes a
// partial mix of old and new chunks for the same document. Reads may
// proceed concurrently against consistent snapshots.
type VectorStore interface {
	// Upsert atomically replaces all chunks previously stored for the
	// document with the given set. Other documents are untouched.
	// No-op on empty input.
	Upsert(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// Remove deletes all chunks for the document. No-op if none exist.
	Remove(ctx context.Context, documentID string) error

	// Search returns up to limit chunks ordered by descending cosine
	// similarity against the query vector. When restrictTo is
	// non-empty, only chunks belonging to those documents are
	// considered.
	Search(ctx context.Context, query []float32, limit int, restrictTo []string) ([]domain.ScoredChunk, error)

	// Close releases resources.
	Close() error
}
