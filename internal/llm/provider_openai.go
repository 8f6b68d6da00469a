package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIProvider calls any OpenAI-compatible chat completions endpoint. It
// serves both the openai and nvidia provider configurations, which differ
// only in base URL, model and credentials.
type OpenAIProvider struct {
	name       string
	apiKey     string
	model      string
	baseURL    string
	maxTokens  int
	httpClient *http.Client
}

// NewOpenAIProvider creates a provider for an OpenAI-compatible API. The name
// distinguishes configured backends ("openai", "nvidia") in generation logs.
func NewOpenAIProvider(name, apiKey, model, baseURL string, maxTokens int, timeout time.Duration) *OpenAIProvider {
	return &OpenAIProvider{
		name:       name,
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string {
	return p.name + "/" + p.model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

// responseContent tolerates both the plain-string content shape and the
// multi-part array shape some OpenAI-compatible servers return.
type responseContent string

func (c *responseContent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = responseContent(s)
		return nil
	}

	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("unexpected message content shape: %w", err)
	}

	var b strings.Builder
	for _, part := range parts {
		b.WriteString(part.Text)
	}
	*c = responseContent(b.String())
	return nil
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content responseContent `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate implements Provider by calling POST {base_url}/chat/completions.
func (p *OpenAIProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (Completion, error) {
	reqBody := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens: p.maxTokens,
		// Lower temperature for deterministic output.
		Temperature: 0.3,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Completion{}, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return Completion{}, fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Completion{}, fmt.Errorf("chat completions request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Completion{}, fmt.Errorf("failed to read chat response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Completion{}, fmt.Errorf("failed to decode chat response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return Completion{}, fmt.Errorf("chat completions returned status %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return Completion{}, fmt.Errorf("chat completions returned status %d", resp.StatusCode)
	}

	if len(parsed.Choices) == 0 {
		return Completion{}, fmt.Errorf("%w: no choices returned", ErrEmptyResponse)
	}

	text := strings.TrimSpace(string(parsed.Choices[0].Message.Content))
	if text == "" {
		return Completion{}, ErrEmptyResponse
	}

	completion := Completion{Text: text}
	if parsed.Usage != nil {
		tokens := parsed.Usage.TotalTokens
		completion.TotalTokens = &tokens
	}
	return completion, nil
}
