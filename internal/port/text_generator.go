package port

import "context"

// GenerateInput is the request for a text-generation call.
type GenerateInput struct {
	Prompt       string
	SystemPrompt string
	// Temperature overrides the provider default when >= 0. Pass a negative
	// value to use the default.
	Temperature float64
	MaxTokens   int
}

// TextGenerator abstracts a probabilistic text-generation capability.
// Implementations return llm.RateLimitError for throttling and
// llm.ContentBlockedError for safety rejections so callers can decide
// retryability.
type TextGenerator interface {
	// Generate sends the prompt and returns the raw model text.
	Generate(ctx context.Context, input GenerateInput) (string, error)

	// Name identifies the provider for logging and circuit tracking.
	Name() string
}
