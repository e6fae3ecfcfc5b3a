// Package chunking splits document text into bounded, ordered chunks.
// A document is classified once into a strategy (code, structured, or
// plain text) and dispatched to the corresponding pure splitter, which
// keeps each heuristic testable in isolation.
package chunking

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// Ensure Engine implements the interface.
var _ driven.Chunker = (*Engine)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 450

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 80

// oversizeFactor is how far a structured section may exceed the chunk
// size before it is recursively split.
const oversizeFactor = 1.5

// CustomStrategy produces chunks for documents with externally
// extracted structure (e.g. PDF or Word outlines). When registered it
// takes precedence over content sniffing. Returned chunks are
// re-indexed and stamped by the engine.
type CustomStrategy func(content, documentID, source string) []domain.Chunk

// piece is an intermediate chunk produced by a splitter, before IDs and
// indices are assigned.
type piece struct {
	content      string
	sectionPath  string
	headingLevel int
	typ          domain.ChunkType
}

// Engine splits document content into chunks using structure-aware
// strategies.
type Engine struct {
	chunkSize int
	overlap   int
	custom    CustomStrategy
}

// Option configures the chunking engine.
type Option func(*Engine)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(e *Engine) {
		if overlap >= 0 {
			e.overlap = overlap
		}
	}
}

// WithStrategy registers a custom strategy that takes precedence over
// content sniffing.
func WithStrategy(s CustomStrategy) Option {
	return func(e *Engine) {
		e.custom = s
	}
}

// New creates a chunking engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(e)
	}

	// Ensure overlap doesn't exceed chunk size
	if e.overlap >= e.chunkSize {
		e.overlap = e.chunkSize / 4
	}

	return e
}

// Chunk splits content into an ordered sequence of chunks. It never
// fails for non-empty input and returns nil for blank input. Indices
// are contiguous from 0 across the whole document.
func (e *Engine) Chunk(content, documentID, source string) []domain.Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	if e.custom != nil {
		logger.Debug("chunking %q with custom strategy", source)
		return reindex(e.custom(content, documentID, source), documentID, source)
	}

	strategy := Classify(content)
	logger.Debug("chunking %q with %s strategy", source, strategy)

	var pieces []piece
	switch strategy {
	case StrategyCode:
		pieces = e.codePieces(content)
	case StrategyStructured:
		pieces = e.structuredPieces(content)
	default:
		pieces = e.textPieces(content)
	}

	chunks := make([]domain.Chunk, 0, len(pieces))
	for i, p := range pieces {
		chunks = append(chunks, domain.Chunk{
			ID:           uuid.New().String(),
			DocumentID:   documentID,
			Content:      p.content,
			Index:        i,
			Source:       source,
			SectionPath:  p.sectionPath,
			HeadingLevel: p.headingLevel,
			Type:         p.typ,
		})
	}
	return chunks
}

// reindex stamps document ID and source and renumbers custom-strategy
// chunks contiguously from 0.
func reindex(chunks []domain.Chunk, documentID, source string) []domain.Chunk {
	out := make([]domain.Chunk, 0, len(chunks))
	for i, c := range chunks {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		c.DocumentID = documentID
		c.Source = source
		c.Index = i
		out = append(out, c)
	}
	return out
}

// overlapTail returns roughly the last n bytes of s, cut at a rune
// boundary and trimmed of leading whitespace so a seeded chunk never
// starts mid-rune or mid-blank.
func overlapTail(s string, n int) string {
	if n <= 0 || len(s) <= n {
		if n <= 0 {
			return ""
		}
		return s
	}
	start := len(s) - n
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return strings.TrimLeft(s[start:], " \t\n")
}
