package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/diagramgpt/diagramgpt/internal/config"
	"github.com/diagramgpt/diagramgpt/internal/domain"
)

// Result is the outcome of a successful generation.
type Result struct {
	// Text is the raw model output before extraction.
	Text string

	// TokensUsed is the provider-reported token count, nil when the
	// provider does not report usage or in fallback mode.
	TokensUsed *int

	// LatencyMs is the wall-clock time spent inside Generate.
	LatencyMs int

	// ModelUsed names the provider and model, or "fallback" in offline mode.
	ModelUsed string

	// Fallback is true when the result came from the offline templates.
	Fallback bool
}

// sleepFunc waits for the given duration or until the context is done.
// Injectable so tests do not pay real backoff delays.
type sleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Client generates diagram source text with retry and exponential backoff.
// A nil provider puts the client in offline fallback mode.
type Client struct {
	provider   Provider
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
	sleep      sleepFunc
	now        func() time.Time
}

// NewClient builds a client for the configured provider. Missing credentials
// for the selected provider are not an error; the client falls back to
// deterministic offline templates and logs a warning.
func NewClient(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}

	client := &Client{
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Duration(cfg.RetryDelaySeconds) * time.Second,
		logger:     log,
		sleep:      defaultSleep,
		now:        time.Now,
	}
	if client.maxRetries < 1 {
		client.maxRetries = 1
	}
	if client.retryDelay < time.Second {
		client.retryDelay = time.Second
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	switch cfg.Provider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Warn("no OpenAI API key configured, using offline fallback generation")
			return client, nil
		}
		client.provider = NewOpenAIProvider("openai", cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.MaxTokens, timeout)
	case "nvidia":
		if cfg.NvidiaAPIKey == "" {
			log.Warn("no NVIDIA API key configured, using offline fallback generation")
			return client, nil
		}
		client.provider = NewOpenAIProvider("nvidia", cfg.NvidiaAPIKey, cfg.NvidiaModel, cfg.NvidiaBaseURL, cfg.MaxTokens, timeout)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Warn("no Gemini API key configured, using offline fallback generation")
			return client, nil
		}
		provider, err := NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		client.provider = provider
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}

	log.Info("initialized llm provider", "provider", client.provider.Name())
	return client, nil
}

// NewClientWithProvider builds a client around an explicit provider. Used by
// tests to substitute a stub provider.
func NewClientWithProvider(provider Provider, maxRetries int, retryDelay time.Duration, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Client{
		provider:   provider,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		logger:     log,
		sleep:      defaultSleep,
		now:        time.Now,
	}
}

// OfflineFallback reports whether the client is running without a provider.
func (c *Client) OfflineFallback() bool {
	return c.provider == nil
}

// ProviderName returns the active provider and model tag, or "fallback" in
// offline mode. Reported by the health endpoint.
func (c *Client) ProviderName() string {
	if c.provider == nil {
		return "fallback"
	}
	return c.provider.Name()
}

// Generate produces diagram source text for the given kind and prompt.
//
// With a provider configured it makes up to maxRetries attempts with
// exponential backoff (delay, 2*delay, 4*delay, ...) between attempts and
// returns an error wrapping ErrLLM when all attempts fail. In offline
// fallback mode it returns a deterministic template with TokensUsed nil.
func (c *Client) Generate(ctx context.Context, kind domain.DiagramKind, prompt string) (Result, error) {
	start := c.now()

	if c.provider == nil {
		c.logger.InfoContext(ctx, "using fallback template generation", "kind", string(kind))
		return Result{
			Text:      fallbackCode(kind, prompt),
			LatencyMs: c.elapsedMs(start),
			ModelUsed: "fallback",
			Fallback:  true,
		}, nil
	}

	systemPrompt := SystemPrompt(kind)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		completion, err := c.provider.Generate(ctx, systemPrompt, prompt)
		if err == nil {
			latency := c.elapsedMs(start)
			c.logger.InfoContext(ctx, "llm generation succeeded",
				"kind", string(kind),
				"attempt", attempt+1,
				"latency_ms", latency,
				"tokens", tokenValue(completion.TotalTokens))
			return Result{
				Text:       completion.Text,
				TokensUsed: completion.TotalTokens,
				LatencyMs:  latency,
				ModelUsed:  c.provider.Name(),
			}, nil
		}

		lastErr = err

		if attempt == c.maxRetries-1 {
			break
		}

		// Exponential backoff: delay, 2*delay, 4*delay, ...
		wait := c.retryDelay * (1 << attempt)
		c.logger.WarnContext(ctx, "llm call failed, retrying",
			"attempt", attempt+1,
			"max_attempts", c.maxRetries,
			"wait", wait.String(),
			"error", err)

		if sleepErr := c.sleep(ctx, wait); sleepErr != nil {
			return Result{}, fmt.Errorf("%w: cancelled during retry backoff: %v", ErrLLM, sleepErr)
		}
	}

	c.logger.ErrorContext(ctx, "llm generation failed after retries",
		"kind", string(kind),
		"attempts", c.maxRetries,
		"error", lastErr)
	return Result{}, fmt.Errorf("%w: after %d attempts: %v", ErrLLM, c.maxRetries, lastErr)
}

func (c *Client) elapsedMs(start time.Time) int {
	return int(c.now().Sub(start) / time.Millisecond)
}

func tokenValue(tokens *int) int {
	if tokens == nil {
		return 0
	}
	return *tokens
}
