package services

import (
	"context"
	"sync/atomic"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
)

// stubEmbedder is a deterministic embedding service for tests.
type stubEmbedder struct {
	embed func(text string) ([]float32, error)
	calls atomic.Int32
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls.Add(1)
	if s.embed != nil {
		return s.embed(text)
	}
	return []float32{1, 0, 0}, nil
}

func (s *stubEmbedder) ModelName() string          { return "stub-embed" }
func (s *stubEmbedder) Ping(context.Context) error { return nil }
func (s *stubEmbedder) Close() error               { return nil }

// stubGenerator is a canned generation service for tests.
type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
	lastSystem string
	calls      atomic.Int32
}

func (s *stubGenerator) Generate(_ context.Context, prompt, system string, _ driven.GenerateOptions) (string, error) {
	s.calls.Add(1)
	s.lastPrompt = prompt
	s.lastSystem = system
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) ModelName() string          { return "stub-gen" }
func (s *stubGenerator) Ping(context.Context) error { return nil }
func (s *stubGenerator) Close() error               { return nil }

// fixedChunker returns a preset chunk slice regardless of input.
type fixedChunker struct {
	chunks []domain.Chunk
}

func (f *fixedChunker) Chunk(_, _, _ string) []domain.Chunk {
	return f.chunks
}
