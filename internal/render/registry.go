package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/diagramgpt/diagramgpt/internal/config"
	"github.com/diagramgpt/diagramgpt/internal/domain"
)

// Registry dispatches render requests to the backend for a diagram kind.
// Graphviz renderers are built per engine; the remote backends are shared.
type Registry struct {
	cfg      config.RenderConfig
	logger   *slog.Logger
	mermaid  *MermaidRenderer
	plantuml *PlantUMLRenderer
}

// NewRegistry builds a registry from the render configuration.
func NewRegistry(cfg config.RenderConfig, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		cfg:      cfg,
		logger:   log,
		mermaid:  NewMermaidRenderer(cfg.MermaidInkURL, time.Duration(cfg.MermaidTimeoutSeconds)*time.Second, log),
		plantuml: NewPlantUMLRenderer(cfg.PlantUMLServerURL, time.Duration(cfg.PlantUMLTimeoutSeconds)*time.Second, log),
	}
}

// RendererFor returns the renderer for a kind. For Graphviz the layout is the
// engine name and must be in the allow-list.
func (r *Registry) RendererFor(kind domain.DiagramKind, layout string) (Renderer, error) {
	switch kind {
	case domain.KindGraphviz:
		return NewGraphvizRenderer(layout, time.Duration(r.cfg.GraphvizTimeoutSeconds)*time.Second, r.logger)
	case domain.KindMermaidGantt:
		return r.mermaid, nil
	case domain.KindPlantUMLWBS:
		return r.plantuml, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidKind, kind)
	}
}

// Render validates the source length and dispatches to the kind's backend.
func (r *Registry) Render(ctx context.Context, kind domain.DiagramKind, layout, source string, format domain.Format) ([]byte, error) {
	if r.cfg.MaxSourceLength > 0 && len(source) > r.cfg.MaxSourceLength {
		return nil, fmt.Errorf("%w: source code exceeds %d characters", domain.ErrValidation, r.cfg.MaxSourceLength)
	}

	renderer, err := r.RendererFor(kind, layout)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, source, format)
}
