package extract_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diagramgpt/diagramgpt/internal/domain"
	"github.com/diagramgpt/diagramgpt/internal/extract"
)

func TestGraphvizExtraction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "tagged fence",
			raw:  "Here is your diagram:\n```dot\ndigraph g { a -> b; }\n```\nEnjoy!",
			want: "digraph g { a -> b; }",
		},
		{
			name: "graphviz tag",
			raw:  "```graphviz\ngraph g { a -- b; }\n```",
			want: "graph g { a -- b; }",
		},
		{
			name: "untagged fence",
			raw:  "```\ndigraph g {}\n```",
			want: "digraph g {}",
		},
		{
			name: "no fence uses whole response",
			raw:  "  digraph g {}  \n",
			want: "digraph g {}",
		},
		{
			name:    "no graph declaration",
			raw:     "I cannot help with that request.",
			wantErr: true,
		},
		{
			name:    "empty response",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := extract.Code(tt.raw, domain.KindGraphviz)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGanttExtraction(t *testing.T) {
	t.Parallel()

	raw := "```mermaid\ngantt\n    title Release Plan\n    section Build\n    Compile :a1, 2024-01-01, 3d\n```"
	got, err := extract.Code(raw, domain.KindMermaidGantt)
	require.NoError(t, err)
	assert.Contains(t, got, "gantt")
	assert.NotContains(t, got, "```")

	_, err = extract.Code("flowchart TD\n  a --> b", domain.KindMermaidGantt)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestWBSAutoWrap(t *testing.T) {
	t.Parallel()

	got, err := extract.Code("* Root\n** Child", domain.KindPlantUMLWBS)
	require.NoError(t, err)
	assert.Equal(t, "@startwbs\n* Root\n** Child\n@endwbs", got)
}

func TestWBSKeepsExistingMarkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"wbs markers", "@startwbs\n* Root\n@endwbs"},
		{"uml markers", "@startuml\n* Root\n@enduml"},
		{"fenced with markers", "```plantuml\n@startwbs\n* Root\n@endwbs\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := extract.Code(tt.raw, domain.KindPlantUMLWBS)
			require.NoError(t, err)
			// Never double-wrap.
			assert.NotContains(t, got, "@startwbs\n@start")
			assert.Contains(t, got, "* Root")
		})
	}
}

func TestWBSEmptyFails(t *testing.T) {
	t.Parallel()

	_, err := extract.Code("   \n  ", domain.KindPlantUMLWBS)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := extract.Code("anything", domain.DiagramKind("sequence"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidKind))
}
