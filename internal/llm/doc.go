// Package llm generates diagram source code from natural-language prompts.
//
// A Client wraps one of the configured providers (OpenAI-compatible HTTP or
// Gemini) with retry and backoff. When no provider credentials are configured
// the client runs in offline fallback mode and returns deterministic template
// diagrams so the rest of the pipeline keeps working in development.
package llm
