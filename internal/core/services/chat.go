package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// pendingExchange carries the query and sources from a composition to
// the generation that consumes it, so the recorded turn cites the
// user's question rather than the composed prompt.
type pendingExchange struct {
	query   string
	prompt  string
	sources []domain.ScoredChunk
}

// ChatService runs the question-answering pipeline: retrieval,
// prompt composition, generation, and history bookkeeping.
type ChatService struct {
	retrieval *RetrievalService
	composer  *PromptComposer
	generator driven.GenerationService

	mu      sync.Mutex
	history *domain.History
	pending *pendingExchange

	historyTurns int
	genOpts      driven.GenerateOptions
}

// NewChatService creates a chat service.
func NewChatService(
	retrieval *RetrievalService,
	composer *PromptComposer,
	generator driven.GenerationService,
	settings domain.Settings,
) *ChatService {
	return &ChatService{
		retrieval:    retrieval,
		composer:     composer,
		generator:    generator,
		history:      domain.NewHistory(domain.DefaultHistoryCap),
		historyTurns: settings.HistoryTurns,
		genOpts: driven.GenerateOptions{
			Temperature: settings.Temperature,
			TopP:        settings.TopP,
		},
	}
}

// RetrieveAndCompose embeds the query, searches the selected documents,
// and returns the augmented prompt with the chunks it cites. With no
// selected documents the prompt degrades to a plain question.
func (s *ChatService) RetrieveAndCompose(ctx context.Context, query string, selectedIDs []string) (string, []domain.ScoredChunk, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	sources, err := s.retrieval.Retrieve(ctx, query, selectedIDs)
	if err != nil {
		return "", nil, err
	}

	prompt := s.composer.Compose(query, sources, s.recent())

	s.mu.Lock()
	s.pending = &pendingExchange{query: query, prompt: prompt, sources: sources}
	s.mu.Unlock()

	return prompt, sources, nil
}

// Generate sends a prompt to the inference server and records the
// exchange. A prompt produced by RetrieveAndCompose is recorded under
// the original query with its RAG provenance; any other prompt is
// recorded as-is without one.
func (s *ChatService) Generate(ctx context.Context, prompt string) (string, error) {
	response, err := s.generator.Generate(ctx, prompt, "", s.genOpts)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	turn := domain.ChatTurn{Query: prompt, Response: response}
	if p := s.pending; p != nil && p.prompt == prompt {
		turn.Query = p.query
		turn.UsedRAG = len(p.sources) > 0
		turn.SourceChunkIDs = chunkIDs(p.sources)
		s.pending = nil
	}
	s.history.Add(turn)
	s.mu.Unlock()

	return response, nil
}

// Ask runs the full pipeline: retrieve, compose, generate, record.
func (s *ChatService) Ask(ctx context.Context, query string, selectedIDs []string) (string, []domain.ScoredChunk, error) {
	prompt, sources, err := s.RetrieveAndCompose(ctx, query, selectedIDs)
	if err != nil {
		return "", nil, err
	}

	logger.Debug("Ask: %d source chunks, prompt %d chars", len(sources), len(prompt))

	response, err := s.Generate(ctx, prompt)
	if err != nil {
		return "", nil, err
	}
	return response, sources, nil
}

// chunkIDs lists the cited chunk IDs in rank order.
func chunkIDs(sources []domain.ScoredChunk) []string {
	if len(sources) == 0 {
		return nil
	}
	ids := make([]string, 0, len(sources))
	for _, sc := range sources {
		ids = append(ids, sc.Chunk.ID)
	}
	return ids
}

// History returns the bounded chat history ring.
func (s *ChatService) History() *domain.History {
	return s.history
}

func (s *ChatService) recent() []domain.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Recent(s.historyTurns)
}
