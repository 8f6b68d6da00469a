package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diagramgpt/diagramgpt/internal/config"
	"github.com/diagramgpt/diagramgpt/internal/domain"
)

// stubProvider fails a configurable number of times before succeeding.
type stubProvider struct {
	failures   int
	calls      int
	text       string
	tokens     *int
	systemSeen string
}

func (s *stubProvider) Generate(_ context.Context, systemPrompt, _ string) (Completion, error) {
	s.calls++
	s.systemSeen = systemPrompt
	if s.calls <= s.failures {
		return Completion{}, errors.New("transient upstream error")
	}
	return Completion{Text: s.text, TotalTokens: s.tokens}, nil
}

func (s *stubProvider) Name() string { return "stub/test-model" }

func newTestClient(t *testing.T, provider Provider, maxRetries int) (*Client, *[]time.Duration) {
	t.Helper()

	client := NewClientWithProvider(provider, maxRetries, time.Second, nil)
	var sleeps []time.Duration
	client.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return client, &sleeps
}

func TestGenerateRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	tokens := 42
	provider := &stubProvider{failures: 2, text: "digraph g { a -> b; }", tokens: &tokens}
	client, sleeps := newTestClient(t, provider, 3)

	result, err := client.Generate(context.Background(), domain.KindGraphviz, "draw a flow")
	require.NoError(t, err)

	assert.Equal(t, "digraph g { a -> b; }", result.Text)
	require.NotNil(t, result.TokensUsed)
	assert.Equal(t, 42, *result.TokensUsed)
	assert.Equal(t, "stub/test-model", result.ModelUsed)
	assert.False(t, result.Fallback)
	assert.Equal(t, 3, provider.calls)

	// Exponential backoff: first wait is the base delay, second is doubled.
	require.Len(t, *sleeps, 2)
	assert.Equal(t, time.Second, (*sleeps)[0])
	assert.Equal(t, 2*time.Second, (*sleeps)[1])
}

func TestGenerateFailsAfterMaxRetries(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{failures: 10}
	client, sleeps := newTestClient(t, provider, 3)

	_, err := client.Generate(context.Background(), domain.KindGraphviz, "draw a flow")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLLM)
	assert.Equal(t, 3, provider.calls)
	assert.Len(t, *sleeps, 2)
}

func TestGenerateUsesKindSpecificSystemPrompt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind     domain.DiagramKind
		contains string
	}{
		{domain.KindGraphviz, "Graphviz DOT"},
		{domain.KindMermaidGantt, "Mermaid Gantt"},
		{domain.KindPlantUMLWBS, "work breakdown structure"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()

			provider := &stubProvider{text: "gantt output placeholder"}
			client, _ := newTestClient(t, provider, 1)

			_, err := client.Generate(context.Background(), tt.kind, "prompt")
			require.NoError(t, err)
			assert.Contains(t, provider.systemSeen, tt.contains)
		})
	}
}

func TestFallbackModeWithoutCredentials(t *testing.T) {
	cfg := config.LLMConfig{
		Provider:          "openai",
		MaxTokens:         1024,
		MaxPromptLength:   2000,
		MaxRetries:        3,
		RetryDelaySeconds: 1,
		TimeoutSeconds:    30,
	}

	client, err := NewClient(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.True(t, client.OfflineFallback())

	tests := []struct {
		name     string
		kind     domain.DiagramKind
		prompt   string
		contains string
	}{
		{"directed keywords pick digraph", domain.KindGraphviz, "a process with steps", "digraph"},
		{"plain prompt picks undirected graph", domain.KindGraphviz, "friends network", "graph example"},
		{"gantt template", domain.KindMermaidGantt, "plan a project", "gantt"},
		{"wbs template", domain.KindPlantUMLWBS, "break down a project", "@startwbs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := client.Generate(context.Background(), tt.kind, tt.prompt)
			require.NoError(t, err)

			assert.Contains(t, result.Text, tt.contains)
			assert.Nil(t, result.TokensUsed)
			assert.Equal(t, "fallback", result.ModelUsed)
			assert.True(t, result.Fallback)
		})
	}
}

func TestNewClientRejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	cfg := config.LLMConfig{Provider: "claude"}
	_, err := NewClient(context.Background(), cfg, nil)
	assert.Error(t, err)
}
