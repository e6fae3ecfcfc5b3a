package domain

import (
	"fmt"
	"time"
)

// Settings holds the tunable configuration of the RAG pipeline.
// The zero value is not usable; construct with DefaultSettings and
// override from the config store.
type Settings struct {
	// ChunkSize is the target chunk length in characters.
	ChunkSize int `toml:"chunk_size"`

	// ChunkOverlap is the number of trailing characters carried into
	// the next chunk for continuity.
	ChunkOverlap int `toml:"chunk_overlap"`

	// TopK is the maximum number of chunks injected into a prompt.
	TopK int `toml:"top_k"`

	// OverfetchFactor multiplies TopK for the initial vector search to
	// compensate for post-filtering.
	OverfetchFactor int `toml:"overfetch_factor"`

	// MinScore is the similarity threshold below which retrieved
	// chunks are dropped.
	MinScore float64 `toml:"min_score"`

	// HistoryTurns is the number of recent chat turns included in a
	// composed prompt.
	HistoryTurns int `toml:"history_turns"`

	// BaseURL is the inference server address.
	BaseURL string `toml:"base_url"`

	// EmbeddingModel is the model used for /api/embeddings.
	EmbeddingModel string `toml:"embedding_model"`

	// GenerationModel is the model used for /api/generate.
	GenerationModel string `toml:"generation_model"`

	// Temperature controls generation randomness.
	Temperature float64 `toml:"temperature"`

	// TopP is the nucleus sampling parameter for generation.
	TopP float64 `toml:"top_p"`

	// RequestTimeout bounds each network call.
	RequestTimeout time.Duration `toml:"request_timeout"`

	// MaxRetries is the number of attempts for transient failures.
	MaxRetries int `toml:"max_retries"`

	// RetryBaseDelay seeds the exponential backoff schedule.
	RetryBaseDelay time.Duration `toml:"retry_base_delay"`

	// BreakerThreshold is the consecutive-failure count that opens the
	// circuit breaker.
	BreakerThreshold int `toml:"breaker_threshold"`

	// BreakerCooldown is how long the breaker stays open before
	// probing.
	BreakerCooldown time.Duration `toml:"breaker_cooldown"`

	// MaxConcurrentRequests bounds in-flight inference calls.
	MaxConcurrentRequests int `toml:"max_concurrent_requests"`
}

// DefaultSettings returns the pipeline defaults.
func DefaultSettings() Settings {
	return Settings{
		ChunkSize:             450,
		ChunkOverlap:          80,
		TopK:                  4,
		OverfetchFactor:       3,
		MinScore:              0.25,
		HistoryTurns:          6,
		BaseURL:               "http://localhost:11434",
		EmbeddingModel:        "nomic-embed-text",
		GenerationModel:       "llama3.2",
		Temperature:           0.3,
		TopP:                  0.9,
		RequestTimeout:        30 * time.Second,
		MaxRetries:            3,
		RetryBaseDelay:        500 * time.Millisecond,
		BreakerThreshold:      5,
		BreakerCooldown:       30 * time.Second,
		MaxConcurrentRequests: 3,
	}
}

// Validate checks the settings for values the pipeline cannot run with.
func (s Settings) Validate() error {
	if s.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive", ErrInvalidInput)
	}
	if s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size)", ErrInvalidInput)
	}
	if s.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", ErrInvalidInput)
	}
	if s.OverfetchFactor <= 0 {
		return fmt.Errorf("%w: overfetch_factor must be positive", ErrInvalidInput)
	}
	if s.MinScore < -1 || s.MinScore > 1 {
		return fmt.Errorf("%w: min_score must be in [-1, 1]", ErrInvalidInput)
	}
	if s.BaseURL == "" {
		return fmt.Errorf("%w: base_url is required", ErrInvalidInput)
	}
	if s.MaxConcurrentRequests <= 0 {
		return fmt.Errorf("%w: max_concurrent_requests must be positive", ErrInvalidInput)
	}
	if s.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must not be negative", ErrInvalidInput)
	}
	return nil
}
