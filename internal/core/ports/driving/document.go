package driving

import (
	"context"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// DocumentManager is the ingestion and lifecycle surface exposed to the
// presentation layer. All operations are safe to invoke from a UI event
// handler; the core assumes no UI thread.
type DocumentManager interface {
	// AddDocument ingests a file from disk and returns the created
	// document. Content is read but not yet chunked or embedded.
	AddDocument(ctx context.Context, path string) (*domain.Document, error)

	// ProcessDocument chunks, embeds, and stores a document's chunks,
	// setting Processed when at least one chunk embeds successfully.
	ProcessDocument(ctx context.Context, id string) (*domain.Document, error)

	// DeleteDocument removes the document, its content, and its chunks
	// from all stores.
	DeleteDocument(ctx context.Context, id string) error

	// UpdateSelection toggles whether the document participates in
	// retrieval.
	UpdateSelection(ctx context.Context, id string, selected bool) error

	// ListDocuments returns all known documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}
