package domain

import "time"

// DocumentType categorises a document by its source format.
type DocumentType string

// Known document types.
const (
	DocumentTypeText     DocumentType = "text"
	DocumentTypeMarkdown DocumentType = "markdown"
	DocumentTypeCode     DocumentType = "code"
)

// Document represents an ingested document with metadata.
// It is the canonical owner of the full text content; embedded chunk
// copies are owned by the vector store.
type Document struct {
	// ID is the unique identifier, generated on ingestion.
	ID string

	// Name is the human-readable display name, typically the file name.
	Name string

	// SourcePath is the original file location on disk.
	SourcePath string

	// Content is the full text content. It may be elided for large
	// files and lazily reloaded from SourcePath on demand.
	Content string

	// SizeBytes is the size of the source file.
	SizeBytes int64

	// AddedAt is when the document was ingested.
	AddedAt time.Time

	// Type categorises the document format.
	Type DocumentType

	// Processed is true iff at least one chunk with a non-empty
	// embedding exists for this document in the vector store.
	Processed bool

	// Selected marks the document as participating in retrieval.
	Selected bool

	// Stale is set when the source file changed after processing.
	Stale bool
}

// ChunkType tags the structural kind of a chunk.
type ChunkType string

// Known chunk types.
const (
	ChunkTypeText       ChunkType = "text"
	ChunkTypeStructured ChunkType = "structured"
	ChunkTypeCode       ChunkType = "code"
)

// Chunk represents a bounded span of document text, the unit of
// embedding and retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the non-empty text content of this chunk.
	Content string

	// Index is the 0-based ordinal position within the document.
	Index int

	// Embedding is the vector representation for similarity search.
	// A chunk with an empty embedding is unsearchable and must be
	// pruned before persistence.
	Embedding []float32

	// Source is the display label, typically the document name.
	Source string

	// SectionPath is the heading path for structured documents.
	SectionPath string

	// HeadingLevel is the markdown heading depth, 0 if none.
	HeadingLevel int

	// Type tags the structural kind of the chunk.
	Type ChunkType
}

// HasEmbedding reports whether the chunk carries a usable embedding.
func (c Chunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// ScoredChunk pairs a chunk with its similarity score for a query.
type ScoredChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the cosine similarity against the query vector.
	Score float64
}
