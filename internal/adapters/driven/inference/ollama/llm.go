package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/resilience"
)

// Ensure GenerationService implements the interface.
var _ driven.GenerationService = (*GenerationService)(nil)

// DefaultGenerationModel is used when no model is configured.
const DefaultGenerationModel = "llama3.2"

// GenerationConfig holds configuration for the generation service.
type GenerationConfig struct {
	// BaseURL is the inference server address.
	BaseURL string

	// Model is the generation model to use.
	Model string
}

// GenerationService produces completions via POST /api/generate.
type GenerationService struct {
	client  *resilience.Client
	baseURL string
	model   string
}

// generateRequest is the /api/generate request format.
type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	System  string   `json:"system,omitempty"`
	Options *options `json:"options,omitempty"`
	Stream  bool     `json:"stream"`
}

// options holds generation parameters.
type options struct {
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
}

// generateResponse is the /api/generate response format. Response is a
// pointer so a missing field is distinguishable from an empty string.
type generateResponse struct {
	Response *string `json:"response"`
}

// NewGenerationService creates a generation service backed by the given
// resilient client.
func NewGenerationService(client *resilience.Client, cfg GenerationConfig) *GenerationService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGenerationModel
	}

	return &GenerationService{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}
}

// Generate sends the prompt and returns the generated text.
func (s *GenerationService) Generate(ctx context.Context, prompt, system string, opts driven.GenerateOptions) (string, error) {
	reqBody := generateRequest{
		Model:  s.model,
		Prompt: prompt,
		System: system,
		Stream: false,
	}
	if opts.Temperature > 0 || opts.TopP > 0 {
		reqBody.Options = &options{
			Temperature: opts.Temperature,
			TopP:        opts.TopP,
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", &domain.OpError{Op: "generate", Err: fmt.Errorf("marshal request: %w", err)}
	}

	url := s.baseURL + "/api/generate"
	resp, err := s.client.Do(ctx, "generate", func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &domain.OpError{
			Op:  "generate",
			Err: fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", &domain.OpError{Op: "generate", Err: fmt.Errorf("decode response: %w", err)}
	}

	if genResp.Response == nil {
		return "", &domain.OpError{Op: "generate", Err: fmt.Errorf("response field missing")}
	}

	return *genResp.Response, nil
}

// ModelName returns the name of the generation model being used.
func (s *GenerationService) ModelName() string {
	return s.model
}

// Ping validates the server is reachable via the /api/tags endpoint,
// which runs no inference.
func (s *GenerationService) Ping(ctx context.Context) error {
	return ping(ctx, s.client, s.baseURL)
}

// Close releases resources.
func (s *GenerationService) Close() error {
	// Pooled connections are owned by the shared resilient client.
	return nil
}
