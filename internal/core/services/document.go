package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentManager = (*DocumentService)(nil)

// maxInlineContent is the size above which document content is elided
// from the metadata record and lazily reloaded from the source path.
const maxInlineContent = 1 << 20 // 1 MiB

// SourceWatcher is an optional hook for tracking source files after
// ingestion, so external edits can be flagged.
type SourceWatcher interface {
	// Watch registers a source file for the document.
	Watch(path, documentID string) error

	// Unwatch stops tracking a source file.
	Unwatch(path string) error
}

// DocumentService handles document ingestion and lifecycle: reading
// files from disk, chunking, embedding, and keeping the stores in sync.
type DocumentService struct {
	docStore     driven.DocumentStore
	vectorStore  driven.VectorStore
	chunker      driven.Chunker
	embedder     driven.EmbeddingService
	watcher      SourceWatcher
	chunkSize    int
	embedWorkers int
}

// NewDocumentService creates a document service.
func NewDocumentService(
	docStore driven.DocumentStore,
	vectorStore driven.VectorStore,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	settings domain.Settings,
) *DocumentService {
	return &DocumentService{
		docStore:     docStore,
		vectorStore:  vectorStore,
		chunker:      chunker,
		embedder:     embedder,
		chunkSize:    settings.ChunkSize,
		embedWorkers: settings.MaxConcurrentRequests,
	}
}

// SetWatcher attaches an optional source-file watcher. Documents added
// afterwards are registered with it; deletion unregisters.
func (s *DocumentService) SetWatcher(w SourceWatcher) {
	s.watcher = w
}

// AddDocument ingests a file from disk. Content is read but not yet
// chunked or embedded; call ProcessDocument for that.
func (s *DocumentService) AddDocument(ctx context.Context, path string) (*domain.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("reading file info: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, abs)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	doc := &domain.Document{
		ID:         uuid.New().String(),
		Name:       filepath.Base(abs),
		SourcePath: abs,
		SizeBytes:  info.Size(),
		AddedAt:    time.Now().UTC(),
		Type:       detectType(abs),
	}
	if len(data) <= maxInlineContent {
		doc.Content = string(data)
	} else {
		logger.Debug("Eliding content for %s (%d bytes)", doc.Name, len(data))
	}

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, err
	}

	if s.watcher != nil {
		if err := s.watcher.Watch(abs, doc.ID); err != nil {
			logger.Warn("Watching %s: %v", abs, err)
		}
	}

	logger.Info("Added document %s (%s, %d bytes)", doc.Name, doc.Type, doc.SizeBytes)
	return doc, nil
}

// ProcessDocument chunks, embeds, and stores a document's chunks.
// Chunks whose embedding fails are skipped; Processed is set when at
// least one chunk embedded successfully.
func (s *DocumentService) ProcessDocument(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	content, err := s.loadContent(doc)
	if err != nil {
		return nil, err
	}

	done := logger.Timed("Processing " + doc.Name)
	defer done()

	chunks := s.chunker.Chunk(content, doc.ID, doc.Name)
	if len(chunks) == 0 && strings.TrimSpace(content) != "" {
		chunks = s.fabricateChunks(content, doc)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: document %s has no content to process", domain.ErrInvalidInput, doc.Name)
	}
	logger.Debug("Chunked %s into %d chunks", doc.Name, len(chunks))

	embedded, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}
	if len(embedded) == 0 {
		return nil, &domain.OpError{
			Op:  "process",
			Err: fmt.Errorf("no chunks embedded for %s: %w", doc.Name, domain.ErrEmbeddingUnavailable),
		}
	}
	if len(embedded) < len(chunks) {
		logger.Warn("Embedded %d/%d chunks for %s", len(embedded), len(chunks), doc.Name)
	}

	if err := s.vectorStore.Upsert(ctx, doc.ID, embedded); err != nil {
		return nil, err
	}

	doc.Processed = true
	doc.Stale = false
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, err
	}

	logger.Info("Processed %s: %d chunks stored", doc.Name, len(embedded))
	return doc, nil
}

// DeleteDocument removes the document, its content, and its chunks
// from all stores.
func (s *DocumentService) DeleteDocument(ctx context.Context, id string) error {
	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	if err := s.vectorStore.Remove(ctx, id); err != nil {
		return err
	}
	if err := s.docStore.DeleteDocument(ctx, id); err != nil {
		return err
	}

	if s.watcher != nil {
		if err := s.watcher.Unwatch(doc.SourcePath); err != nil {
			logger.Warn("Unwatching %s: %v", doc.SourcePath, err)
		}
	}

	logger.Info("Deleted document %s", doc.Name)
	return nil
}

// UpdateSelection toggles whether the document participates in
// retrieval.
func (s *DocumentService) UpdateSelection(ctx context.Context, id string, selected bool) error {
	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	doc.Selected = selected
	return s.docStore.SaveDocument(ctx, doc)
}

// ListDocuments returns all known documents.
func (s *DocumentService) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}

// loadContent returns the document content, reloading it from the
// source path when it was elided at ingestion.
func (s *DocumentService) loadContent(doc *domain.Document) (string, error) {
	if doc.Content != "" || doc.SizeBytes == 0 {
		return doc.Content, nil
	}
	data, err := os.ReadFile(doc.SourcePath)
	if err != nil {
		return "", fmt.Errorf("reloading content from %s: %w", doc.SourcePath, err)
	}
	return string(data), nil
}

// fabricateChunks is the degenerate fallback when the chunking engine
// produced nothing for non-blank content: the whole document as one
// chunk if small enough, otherwise fixed-size slices.
func (s *DocumentService) fabricateChunks(content string, doc *domain.Document) []domain.Chunk {
	makeChunk := func(text string, index int) domain.Chunk {
		return domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Content:    text,
			Index:      index,
			Source:     doc.Name,
			Type:       domain.ChunkTypeText,
		}
	}

	if len(content) <= 2*s.chunkSize {
		return []domain.Chunk{makeChunk(content, 0)}
	}

	var chunks []domain.Chunk
	for start := 0; start < len(content); {
		end := start + s.chunkSize
		if end >= len(content) {
			end = len(content)
		} else {
			// Never cut a multi-byte rune in half.
			for end < len(content) && !utf8.RuneStart(content[end]) {
				end++
			}
		}
		chunks = append(chunks, makeChunk(content[start:end], len(chunks)))
		start = end
	}
	return chunks
}

// embedChunks generates embeddings with bounded parallelism and
// returns only the chunks that embedded successfully, in their
// original order. Context cancellation aborts the whole batch.
func (s *DocumentService) embedChunks(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.embedWorkers)

	var mu sync.Mutex
	failed := make(map[int]bool)

	for i := range chunks {
		g.Go(func() error {
			vector, err := s.embedder.Embed(gctx, chunks[i].Content)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Warn("Embedding chunk %d failed: %v", chunks[i].Index, err)
				mu.Lock()
				failed[i] = true
				mu.Unlock()
				return nil
			}
			chunks[i].Embedding = vector
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	embedded := make([]domain.Chunk, 0, len(chunks))
	for i, c := range chunks {
		if !failed[i] && c.HasEmbedding() {
			embedded = append(embedded, c)
		}
	}
	return embedded, nil
}

// detectType maps a file extension to a document type.
func detectType(path string) domain.DocumentType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return domain.DocumentTypeMarkdown
	case ".go", ".py", ".js", ".ts", ".rs", ".java", ".c", ".h", ".cpp", ".cs", ".rb", ".sh":
		return domain.DocumentTypeCode
	default:
		return domain.DocumentTypeText
	}
}
