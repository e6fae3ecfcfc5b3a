package driven

import "github.com/custodia-labs/docchat-cli/internal/core/domain"

// Chunker splits document content into an ordered sequence of chunks.
// Implementations never fail for non-empty input and return an empty
// sequence for blank input.
type Chunker interface {
	// Chunk splits content into chunks with contiguous indices
	// starting at 0, stamped with the document ID and source label.
	Chunk(content, documentID, source string) []domain.Chunk
}
