package driven

import "context"

// GenerationService produces text completions from the inference server.
type GenerationService interface {
	// Generate sends the prompt and optional system instruction and
	// returns the generated text.
	Generate(ctx context.Context, prompt, system string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight
	// request that runs no inference.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// TopP is the nucleus sampling parameter.
	TopP float64
}
