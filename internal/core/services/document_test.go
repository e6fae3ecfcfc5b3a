package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docchat-cli/internal/chunking"
	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

func documentFixture(t *testing.T) (*DocumentService, *memory.DocumentStore, *memory.VectorStore, *stubEmbedder) {
	t.Helper()

	docStore := memory.NewDocumentStore()
	vectorStore := memory.NewVectorStore()
	embedder := &stubEmbedder{}

	svc := NewDocumentService(docStore, vectorStore, chunking.New(), embedder, domain.DefaultSettings())
	return svc, docStore, vectorStore, embedder
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestAddDocument(t *testing.T) {
	svc, docStore, _, _ := documentFixture(t)
	ctx := context.Background()

	path := writeTempFile(t, "readme.md", "# Title\n\nSome intro text.")
	doc, err := svc.AddDocument(ctx, path)
	require.NoError(t, err)

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "readme.md", doc.Name)
	assert.Equal(t, domain.DocumentTypeMarkdown, doc.Type)
	assert.Equal(t, "# Title\n\nSome intro text.", doc.Content)
	assert.False(t, doc.Processed)
	assert.False(t, doc.Selected)

	stored, err := docStore.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Name, stored.Name)
}

func TestAddDocument_MissingFile(t *testing.T) {
	svc, _, _, _ := documentFixture(t)
	_, err := svc.AddDocument(context.Background(), "/nonexistent/file.txt")
	assert.Error(t, err)
}

func TestAddDocument_Directory(t *testing.T) {
	svc, _, _, _ := documentFixture(t)
	_, err := svc.AddDocument(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAddDocument_TypeDetection(t *testing.T) {
	svc, _, _, _ := documentFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		want domain.DocumentType
	}{
		{"main.go", domain.DocumentTypeCode},
		{"script.py", domain.DocumentTypeCode},
		{"notes.md", domain.DocumentTypeMarkdown},
		{"plain.txt", domain.DocumentTypeText},
		{"noext", domain.DocumentTypeText},
	}
	for _, tt := range tests {
		path := writeTempFile(t, tt.name, "content here")
		doc, err := svc.AddDocument(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, tt.want, doc.Type, tt.name)
	}
}

func TestProcessDocument(t *testing.T) {
	svc, docStore, vectorStore, embedder := documentFixture(t)
	ctx := context.Background()

	content := strings.Repeat("A paragraph of text that will be chunked. ", 30)
	path := writeTempFile(t, "doc.txt", content)
	doc, err := svc.AddDocument(ctx, path)
	require.NoError(t, err)

	processed, err := svc.ProcessDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, processed.Processed)
	assert.Greater(t, int(embedder.calls.Load()), 0)

	stored, err := docStore.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, stored.Processed)

	results, err := vectorStore.Search(ctx, []float32{1, 0, 0}, 100, []string{doc.ID})
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestProcessDocument_NotFound(t *testing.T) {
	svc, _, _, _ := documentFixture(t)
	_, err := svc.ProcessDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProcessDocument_PartialEmbedFailure(t *testing.T) {
	svc, _, vectorStore, embedder := documentFixture(t)
	ctx := context.Background()

	// Two paragraphs far enough apart to become two chunks.
	para1 := strings.Repeat("alpha ", 80)
	para2 := strings.Repeat("beta ", 80)
	path := writeTempFile(t, "doc.txt", para1+"\n\n"+para2)

	embedder.embed = func(text string) ([]float32, error) {
		if strings.Contains(text, "beta") {
			return nil, errors.New("embedding backend hiccup")
		}
		return []float32{1, 0}, nil
	}

	doc, err := svc.AddDocument(ctx, path)
	require.NoError(t, err)

	processed, err := svc.ProcessDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, processed.Processed)

	results, err := vectorStore.Search(ctx, []float32{1, 0}, 100, []string{doc.ID})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.NotContains(t, r.Chunk.Content, "beta")
	}
}

func TestProcessDocument_AllEmbedsFail(t *testing.T) {
	svc, docStore, _, embedder := documentFixture(t)
	ctx := context.Background()

	embedder.embed = func(string) ([]float32, error) {
		return nil, errors.New("backend down")
	}

	path := writeTempFile(t, "doc.txt", "Some content to process.")
	doc, err := svc.AddDocument(ctx, path)
	require.NoError(t, err)

	_, err = svc.ProcessDocument(ctx, doc.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	stored, err := docStore.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, stored.Processed)
}

func TestProcessDocument_FabricatesFallbackChunk(t *testing.T) {
	docStore := memory.NewDocumentStore()
	vectorStore := memory.NewVectorStore()
	embedder := &stubEmbedder{}

	// A chunker that yields nothing forces the fallback path.
	svc := NewDocumentService(docStore, vectorStore, &fixedChunker{}, embedder, domain.DefaultSettings())
	ctx := context.Background()

	path := writeTempFile(t, "doc.txt", "Short but real content.")
	doc, err := svc.AddDocument(ctx, path)
	require.NoError(t, err)

	processed, err := svc.ProcessDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, processed.Processed)

	results, err := vectorStore.Search(ctx, []float32{1, 0, 0}, 10, []string{doc.ID})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Short but real content.", results[0].Chunk.Content)
}

func TestProcessDocument_FallbackSlicesKeepValidUTF8(t *testing.T) {
	docStore := memory.NewDocumentStore()
	vectorStore := memory.NewVectorStore()
	embedder := &stubEmbedder{}

	svc := NewDocumentService(docStore, vectorStore, &fixedChunker{}, embedder, domain.DefaultSettings())
	ctx := context.Background()

	// The odd leading byte puts every fixed-size cut mid-rune.
	content := "a" + strings.Repeat("é", 600)
	path := writeTempFile(t, "doc.txt", content)
	doc, err := svc.AddDocument(ctx, path)
	require.NoError(t, err)

	_, err = svc.ProcessDocument(ctx, doc.ID)
	require.NoError(t, err)

	results, err := vectorStore.Search(ctx, []float32{1, 0, 0}, 100, []string{doc.ID})
	require.NoError(t, err)
	require.Greater(t, len(results), 1)

	var rebuilt strings.Builder
	byIndex := make(map[int]string, len(results))
	for _, r := range results {
		assert.True(t, utf8.ValidString(r.Chunk.Content),
			"chunk %d contains invalid UTF-8", r.Chunk.Index)
		byIndex[r.Chunk.Index] = r.Chunk.Content
	}
	for i := 0; i < len(byIndex); i++ {
		rebuilt.WriteString(byIndex[i])
	}
	assert.Equal(t, content, rebuilt.String())
}

func TestProcessDocument_ReprocessReplacesChunks(t *testing.T) {
	svc, _, vectorStore, _ := documentFixture(t)
	ctx := context.Background()

	path := writeTempFile(t, "doc.txt", "Original content.")
	doc, err := svc.AddDocument(ctx, path)
	require.NoError(t, err)

	_, err = svc.ProcessDocument(ctx, doc.ID)
	require.NoError(t, err)
	first, err := vectorStore.Search(ctx, []float32{1, 0, 0}, 100, []string{doc.ID})
	require.NoError(t, err)

	_, err = svc.ProcessDocument(ctx, doc.ID)
	require.NoError(t, err)
	second, err := vectorStore.Search(ctx, []float32{1, 0, 0}, 100, []string{doc.ID})
	require.NoError(t, err)

	// Same chunk count, fresh IDs: wholesale replacement, no residue.
	assert.Len(t, second, len(first))
}

func TestDeleteDocument(t *testing.T) {
	svc, docStore, vectorStore, _ := documentFixture(t)
	ctx := context.Background()

	path := writeTempFile(t, "doc.txt", "Content to delete.")
	doc, err := svc.AddDocument(ctx, path)
	require.NoError(t, err)
	_, err = svc.ProcessDocument(ctx, doc.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDocument(ctx, doc.ID))

	_, err = docStore.GetDocument(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	results, err := vectorStore.Search(ctx, []float32{1, 0, 0}, 100, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDeleteDocument_NotFound(t *testing.T) {
	svc, _, _, _ := documentFixture(t)
	err := svc.DeleteDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateSelection(t *testing.T) {
	svc, docStore, _, _ := documentFixture(t)
	ctx := context.Background()

	path := writeTempFile(t, "doc.txt", "content")
	doc, err := svc.AddDocument(ctx, path)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateSelection(ctx, doc.ID, true))
	stored, err := docStore.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, stored.Selected)

	require.NoError(t, svc.UpdateSelection(ctx, doc.ID, false))
	stored, err = docStore.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, stored.Selected)
}

func TestProcessDocument_ClearsStaleFlag(t *testing.T) {
	svc, docStore, _, _ := documentFixture(t)
	ctx := context.Background()

	path := writeTempFile(t, "doc.txt", "content")
	doc, err := svc.AddDocument(ctx, path)
	require.NoError(t, err)

	doc.Stale = true
	require.NoError(t, docStore.SaveDocument(ctx, doc))

	processed, err := svc.ProcessDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, processed.Stale)
}
