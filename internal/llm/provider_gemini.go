package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider calls the Gemini API through the official genai client.
type GeminiProvider struct {
	client    *genai.Client
	model     string
	maxTokens int
}

// NewGeminiProvider creates a provider backed by the Gemini API.
func NewGeminiProvider(ctx context.Context, apiKey, model string, maxTokens int) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiProvider{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Name implements Provider.
func (p *GeminiProvider) Name() string {
	return "gemini/" + p.model
}

// Generate implements Provider using a single GenerateContent call.
func (p *GeminiProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (Completion, error) {
	genConfig := &genai.GenerateContentConfig{
		// Lower temperature for deterministic output.
		Temperature:       genai.Ptr[float32](0.3),
		MaxOutputTokens:   int32(p.maxTokens),
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(userPrompt), genConfig)
	if err != nil {
		return Completion{}, fmt.Errorf("gemini generate content failed: %w", err)
	}
	if resp == nil {
		return Completion{}, fmt.Errorf("%w: nil response", ErrEmptyResponse)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return Completion{}, ErrEmptyResponse
	}

	completion := Completion{Text: text}
	if resp.UsageMetadata != nil {
		tokens := int(resp.UsageMetadata.TotalTokenCount)
		completion.TotalTokens = &tokens
	}
	return completion, nil
}
