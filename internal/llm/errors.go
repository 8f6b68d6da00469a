package llm

import "errors"

// Sentinel errors for LLM generation failures. Callers use errors.Is to
// distinguish them without depending on provider internals.
var (
	// ErrLLM indicates the provider call failed after exhausting retries.
	ErrLLM = errors.New("llm generation failed")

	// ErrEmptyResponse indicates the provider returned no usable text.
	ErrEmptyResponse = errors.New("empty response from llm")
)
