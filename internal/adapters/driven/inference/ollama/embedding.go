package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/logger"
	"github.com/custodia-labs/docchat-cli/internal/resilience"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL        = "http://localhost:11434"
	DefaultEmbeddingModel = "nomic-embed-text"

	// MaxEmbedChars is the hard input cap; longer text is truncated
	// before sending.
	MaxEmbedChars = 8192
)

// EmbeddingConfig holds configuration for the embedding service.
type EmbeddingConfig struct {
	// BaseURL is the inference server address.
	BaseURL string

	// Model is the embedding model to use.
	Model string
}

// EmbeddingService generates embeddings via POST /api/embeddings.
type EmbeddingService struct {
	client  *resilience.Client
	baseURL string
	model   string
}

// embedRequest is the /api/embeddings request format.
type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// embedResponse is the /api/embeddings response format.
type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// NewEmbeddingService creates an embedding service backed by the given
// resilient client.
func NewEmbeddingService(client *resilience.Client, cfg EmbeddingConfig) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultEmbeddingModel
	}

	return &EmbeddingService{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}
}

// Embed generates a vector embedding for the given text. Input past
// MaxEmbedChars is truncated with a warning.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if len(text) > MaxEmbedChars {
		cut := MaxEmbedChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		logger.Warn("embedding input truncated from %d to %d bytes", len(text), cut)
		text = text[:cut]
	}

	jsonBody, err := json.Marshal(embedRequest{Model: s.model, Prompt: text})
	if err != nil {
		return nil, &domain.OpError{Op: "embed", Err: fmt.Errorf("marshal request: %w", err)}
	}

	url := s.baseURL + "/api/embeddings"
	resp, err := s.client.Do(ctx, "embed", func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &domain.OpError{
			Op:  "embed",
			Err: fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, &domain.OpError{Op: "embed", Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(embedResp.Embedding) == 0 {
		return nil, &domain.OpError{Op: "embed", Err: domain.ErrEmbeddingUnavailable}
	}

	// Convert float64 to float32
	embedding := make([]float32, len(embedResp.Embedding))
	for i, v := range embedResp.Embedding {
		embedding[i] = float32(v)
	}

	return embedding, nil
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the server is reachable via the /api/tags endpoint,
// which runs no inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return ping(ctx, s.client, s.baseURL)
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	// Pooled connections are owned by the shared resilient client.
	return nil
}

// ping checks /api/tags through the resilient client.
func ping(ctx context.Context, client *resilience.Client, baseURL string) error {
	url := baseURL + "/api/tags"
	resp, err := client.Do(ctx, "ping", func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
