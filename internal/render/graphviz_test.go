package render

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diagramgpt/diagramgpt/internal/domain"
)

const validDOT = `digraph g {
    a [label="Start"];
    b [label="End"];
    a -> b;
}`

func TestValidateDOT(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		source  string
		wantErr string
	}{
		{"valid digraph", validDOT, ""},
		{"valid strict digraph", "strict digraph g { a -> b; }", ""},
		{"valid undirected graph", "graph g { a -- b; }", ""},
		{"too short", "digraph", "too short"},
		{"wrong prefix", "subgraph cluster { a -> b; }", "must start with"},
		{"unbalanced braces", "digraph g { a -> b; }}", "Unbalanced braces"},
		{"missing body", "digraph g a to b and c", "graph body in braces"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateDOT(tt.source)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewGraphvizRendererRejectsUnknownEngine(t *testing.T) {
	t.Parallel()

	_, err := NewGraphvizRenderer("latex", time.Second, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidEngine)
}

func TestGraphvizRenderRejectsInvalidSource(t *testing.T) {
	t.Parallel()

	r, err := NewGraphvizRenderer("dot", 5*time.Second, nil)
	require.NoError(t, err)

	_, err = r.Render(context.Background(), "not a graph at all", domain.FormatSVG)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGraphvizRenderSVG(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("dot"); err != nil {
		t.Skip("graphviz dot binary not installed")
	}

	r, err := NewGraphvizRenderer("dot", 10*time.Second, nil)
	require.NoError(t, err)

	out, err := r.Render(context.Background(), validDOT, domain.FormatSVG)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(out), "<svg"), "output should contain an svg element")
}
