package llm

import "context"

// Completion is a single raw model response.
type Completion struct {
	// Text is the raw response text, including any markdown fences the
	// model chose to emit. Extraction happens downstream.
	Text string

	// TotalTokens is the total token count reported by the provider, or
	// nil when the provider does not report usage.
	TotalTokens *int
}

// Provider abstracts a single model backend. Implementations make exactly one
// attempt per call; retry and backoff live in the Client.
type Provider interface {
	// Generate sends the system and user prompts to the model and returns
	// its completion.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (Completion, error)

	// Name identifies the provider and model for generation logs, e.g.
	// "openai/gpt-4o-mini".
	Name() string
}
