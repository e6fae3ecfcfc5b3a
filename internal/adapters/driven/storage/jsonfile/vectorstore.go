// Package jsonfile provides a vector store persisted as one JSON file
// per document. It trades write amplification for a trivially
// inspectable on-disk format; documents load into memory at open, so
// search runs at in-memory speed.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// chunkRecord is the on-disk chunk encoding.
type chunkRecord struct {
	ID           string    `json:"id"`
	DocumentID   string    `json:"document_id"`
	Content      string    `json:"content"`
	Index        int       `json:"index"`
	Embedding    []float32 `json:"embedding"`
	Source       string    `json:"source"`
	SectionPath  string    `json:"section_path,omitempty"`
	HeadingLevel int       `json:"heading_level,omitempty"`
	Type         string    `json:"chunk_type,omitempty"`
}

// VectorStore persists each document's chunks in <documentID>.json
// under the store directory. Writes go through a temp file and rename
// so a crash never leaves a half-written document.
type VectorStore struct {
	mu    sync.RWMutex
	dir   string
	cache map[string][]domain.Chunk
}

// NewVectorStore opens (or creates) a store at the given directory and
// loads all persisted documents. If dir is empty, defaults to
// ~/.docchat/data/vectors.
func NewVectorStore(dir string) (*VectorStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".docchat", "data", "vectors")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	s := &VectorStore{
		dir:   dir,
		cache: make(map[string][]domain.Chunk),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads every persisted document file into the cache.
func (s *VectorStore) load() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("reading store directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}

		var records []chunkRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("unmarshaling %s: %w", name, err)
		}

		docID := strings.TrimSuffix(name, ".json")
		s.cache[docID] = fromRecords(records)
	}
	return nil
}

// Upsert atomically replaces all chunks for the document, on disk and
// in the cache. Chunks without embeddings are dropped.
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

	data, err := json.Marshal(toRecords(kept))
	if err != nil {
		return fmt.Errorf("marshaling chunks: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.docPath(documentID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}

	s.cache[documentID] = kept
	return nil
}

// Remove deletes the document's chunks from disk and cache.
func (s *VectorStore) Remove(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.docPath(documentID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing document file: %w", err)
	}
	delete(s.cache, documentID)
	return nil
}

// Search returns up to limit chunks by descending cosine similarity
// over the in-memory cache.
func (s *VectorStore) Search(_ context.Context, query []float32, limit int, restrictTo []string) ([]domain.ScoredChunk, error) {
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []domain.ScoredChunk
	appendScored := func(chunks []domain.Chunk) {
		for _, c := range chunks {
			results = append(results, domain.ScoredChunk{
				Chunk: c,
				Score: domain.CosineSimilarity(query, c.Embedding),
			})
		}
	}

	if len(restrictTo) > 0 {
		for _, docID := range restrictTo {
			appendScored(s.cache[docID])
		}
	} else {
		for docID := range s.cache {
			appendScored(s.cache[docID])
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

// docPath returns the on-disk path for a document's chunk file.
func (s *VectorStore) docPath(documentID string) string {
	return filepath.Join(s.dir, documentID+".json")
}

func toRecords(chunks []domain.Chunk) []chunkRecord {
	records := make([]chunkRecord, len(chunks))
	for i, c := range chunks {
		records[i] = chunkRecord{
			ID:           c.ID,
			DocumentID:   c.DocumentID,
			Content:      c.Content,
			Index:        c.Index,
			Embedding:    c.Embedding,
			Source:       c.Source,
			SectionPath:  c.SectionPath,
			HeadingLevel: c.HeadingLevel,
			Type:         string(c.Type),
		}
	}
	return records
}

func fromRecords(records []chunkRecord) []domain.Chunk {
	chunks := make([]domain.Chunk, len(records))
	for i, r := range records {
		chunks[i] = domain.Chunk{
			ID:           r.ID,
			DocumentID:   r.DocumentID,
			Content:      r.Content,
			Index:        r.Index,
			Embedding:    r.Embedding,
			Source:       r.Source,
			SectionPath:  r.SectionPath,
			HeadingLevel: r.HeadingLevel,
			Type:         domain.ChunkType(r.Type),
		}
	}
	return chunks
}
