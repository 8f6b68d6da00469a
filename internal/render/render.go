// Package render turns diagram source code into SVG or PNG images.
//
// Three backends are supported: Graphviz via the locally installed binaries,
// Mermaid Gantt charts via the mermaid.ink HTTP API, and PlantUML WBS
// diagrams via a PlantUML server. Each backend validates its source before
// rendering so obviously broken code fails fast with a validation error
// instead of a backend round trip.
package render

import (
	"context"

	"github.com/diagramgpt/diagramgpt/internal/domain"
)

// Renderer renders diagram source code of one kind into image bytes.
type Renderer interface {
	// Render validates the source and produces image bytes in the given
	// format. Validation failures wrap domain.ErrValidation; backend
	// failures wrap ErrRender.
	Render(ctx context.Context, source string, format domain.Format) ([]byte, error)
}

// MimeType returns the MIME type for a render output format.
func MimeType(format domain.Format) string {
	switch format {
	case domain.FormatSVG:
		return "image/svg+xml"
	case domain.FormatPNG:
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
