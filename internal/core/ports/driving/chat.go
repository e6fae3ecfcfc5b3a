package driving

import (
	"context"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// ChatService is the question-answering surface exposed to the
// presentation layer.
type ChatService interface {
	// RetrieveAndCompose embeds the query, searches the selected
	// documents, and returns the augmented prompt along with the
	// chunks it cites. With no selected documents the prompt degrades
	// to a plain question and sources are empty.
	RetrieveAndCompose(ctx context.Context, query string, selectedIDs []string) (string, []domain.ScoredChunk, error)

	// Generate sends a composed prompt to the inference server and
	// records the exchange in the chat history.
	Generate(ctx context.Context, prompt string) (string, error)

	// Ask is the full pipeline: retrieve, compose, generate, record.
	Ask(ctx context.Context, query string, selectedIDs []string) (string, []domain.ScoredChunk, error)

	// History returns the bounded chat history ring.
	History() *domain.History
}
