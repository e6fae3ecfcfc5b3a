package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// fakeDocumentManager is an in-memory driving.DocumentManager.
type fakeDocumentManager struct {
	docs      map[string]*domain.Document
	processed []string
	deleted   []string
}

func newFakeDocumentManager() *fakeDocumentManager {
	return &fakeDocumentManager{docs: make(map[string]*domain.Document)}
}

func (f *fakeDocumentManager) AddDocument(_ context.Context, path string) (*domain.Document, error) {
	doc := &domain.Document{ID: "doc-" + filepath.Base(path), Name: filepath.Base(path), SourcePath: path}
	f.docs[doc.ID] = doc
	return doc, nil
}

func (f *fakeDocumentManager) ProcessDocument(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc.Processed = true
	f.processed = append(f.processed, id)
	return doc, nil
}

func (f *fakeDocumentManager) DeleteDocument(_ context.Context, id string) error {
	if _, ok := f.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.docs, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeDocumentManager) UpdateSelection(_ context.Context, id string, selected bool) error {
	doc, ok := f.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Selected = selected
	return nil
}

func (f *fakeDocumentManager) ListDocuments(_ context.Context) ([]domain.Document, error) {
	out := make([]domain.Document, 0, len(f.docs))
	for _, d := range f.docs {
		out = append(out, *d)
	}
	return out, nil
}

// fakeChatService is a canned driving.ChatService.
type fakeChatService struct {
	response     string
	lastQuery    string
	lastSelected []string
	history      *domain.History
}

func newFakeChatService(response string) *fakeChatService {
	return &fakeChatService{response: response, history: domain.NewHistory(0)}
}

func (f *fakeChatService) RetrieveAndCompose(_ context.Context, query string, selectedIDs []string) (string, []domain.ScoredChunk, error) {
	f.lastQuery = query
	f.lastSelected = selectedIDs
	return "prompt: " + query, nil, nil
}

func (f *fakeChatService) Generate(_ context.Context, _ string) (string, error) {
	return f.response, nil
}

func (f *fakeChatService) Ask(_ context.Context, query string, selectedIDs []string) (string, []domain.ScoredChunk, error) {
	f.lastQuery = query
	f.lastSelected = selectedIDs
	return f.response, nil, nil
}

func (f *fakeChatService) History() *domain.History { return f.history }

// setupTestServices wires fakes into the package vars and returns a
// cleanup restoring the previous state.
func setupTestServices() (*fakeDocumentManager, *fakeChatService, func()) {
	oldDocs, oldChat, oldSettings := documentService, chatService, settingsStore
	docs := newFakeDocumentManager()
	chat := newFakeChatService("canned answer")
	documentService = docs
	chatService = chat
	return docs, chat, func() {
		documentService, chatService, settingsStore = oldDocs, oldChat, oldSettings
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "docchat", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Contains(t, names, "add")
	assert.Contains(t, names, "list")
	assert.Contains(t, names, "process")
	assert.Contains(t, names, "select")
	assert.Contains(t, names, "deselect")
	assert.Contains(t, names, "delete")
	assert.Contains(t, names, "ask")
	assert.Contains(t, names, "chat")
	assert.Contains(t, names, "settings")
	assert.Contains(t, names, "version")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "docchat version")
}

func TestAddCmd_RequiresArg(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "add")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAddCmd(t *testing.T) {
	docs, _, cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0600))

	out, err := execute(t, "add", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Added file.txt")
	assert.Len(t, docs.docs, 1)
}

func TestListCmd_Empty(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No documents")
}

func TestListCmd_ShowsStatus(t *testing.T) {
	docs, _, cleanup := setupTestServices()
	defer cleanup()

	docs.docs["doc-1"] = &domain.Document{ID: "doc-1", Name: "a.md", Processed: true, Selected: true, Stale: true}

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "processed, selected, stale")
	assert.Contains(t, out, "Total: 1 documents")
}

func TestProcessCmd(t *testing.T) {
	docs, _, cleanup := setupTestServices()
	defer cleanup()
	docs.docs["doc-1"] = &domain.Document{ID: "doc-1", Name: "a.md"}

	out, err := execute(t, "process", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Processed a.md")
	assert.Equal(t, []string{"doc-1"}, docs.processed)
}

func TestProcessCmd_NotFound(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "process", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSelectAndDeselectCmds(t *testing.T) {
	docs, _, cleanup := setupTestServices()
	defer cleanup()
	docs.docs["doc-1"] = &domain.Document{ID: "doc-1", Name: "a.md"}

	_, err := execute(t, "select", "doc-1")
	require.NoError(t, err)
	assert.True(t, docs.docs["doc-1"].Selected)

	_, err = execute(t, "deselect", "doc-1")
	require.NoError(t, err)
	assert.False(t, docs.docs["doc-1"].Selected)
}

func TestDeleteCmd(t *testing.T) {
	docs, _, cleanup := setupTestServices()
	defer cleanup()
	docs.docs["doc-1"] = &domain.Document{ID: "doc-1", Name: "a.md"}

	out, err := execute(t, "delete", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted doc-1")
	assert.Empty(t, docs.docs)
}

func TestAskCmd_PassesSelectedProcessedDocs(t *testing.T) {
	docs, chat, cleanup := setupTestServices()
	defer cleanup()

	docs.docs["doc-1"] = &domain.Document{ID: "doc-1", Name: "a.md", Processed: true, Selected: true}
	docs.docs["doc-2"] = &domain.Document{ID: "doc-2", Name: "b.md", Processed: false, Selected: true}
	docs.docs["doc-3"] = &domain.Document{ID: "doc-3", Name: "c.md", Processed: true, Selected: false}

	out, err := execute(t, "ask", "what", "is", "this?")
	require.NoError(t, err)
	assert.Contains(t, out, "canned answer")
	assert.Equal(t, "what is this?", chat.lastQuery)
	assert.Equal(t, []string{"doc-1"}, chat.lastSelected)
}

func TestAskCmd_NoServices(t *testing.T) {
	oldDocs, oldChat := documentService, chatService
	documentService, chatService = nil, nil
	defer func() { documentService, chatService = oldDocs, oldChat }()

	_, err := execute(t, "ask", "question")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
