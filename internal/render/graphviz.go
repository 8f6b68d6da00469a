package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/diagramgpt/diagramgpt/internal/domain"
)

// GraphvizRenderer renders DOT source by invoking the local Graphviz layout
// binaries (dot, neato, ...). The engine doubles as the executable name.
type GraphvizRenderer struct {
	engine  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewGraphvizRenderer creates a renderer for the given layout engine. The
// engine must be one of domain.GraphvizEngines.
func NewGraphvizRenderer(engine string, timeout time.Duration, log *slog.Logger) (*GraphvizRenderer, error) {
	if !domain.IsValidEngine(engine) {
		return nil, fmt.Errorf("%w: invalid engine: %q", domain.ErrInvalidEngine, engine)
	}
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GraphvizRenderer{
		engine:  engine,
		timeout: timeout,
		logger:  log,
	}, nil
}

// ValidateDOT performs basic structural checks on DOT source before it is
// handed to the layout binary.
func ValidateDOT(source string) error {
	source = strings.TrimSpace(source)

	if len(source) < 10 {
		return fmt.Errorf("%w: DOT code too short", domain.ErrValidation)
	}

	if !strings.HasPrefix(source, "graph") && !strings.HasPrefix(source, "digraph") &&
		!strings.HasPrefix(source, "strict graph") && !strings.HasPrefix(source, "strict digraph") {
		return fmt.Errorf("%w: DOT code must start with 'graph' or 'digraph'", domain.ErrValidation)
	}

	if strings.Count(source, "{") != strings.Count(source, "}") {
		return fmt.Errorf("%w: Unbalanced braces in DOT code", domain.ErrValidation)
	}

	if !strings.Contains(source, "{") || !strings.Contains(source, "}") {
		return fmt.Errorf("%w: DOT code must contain graph body in braces", domain.ErrValidation)
	}

	return nil
}

// Render implements Renderer by piping the source through the engine binary
// with -T{format}.
func (r *GraphvizRenderer) Render(ctx context.Context, source string, format domain.Format) ([]byte, error) {
	if !format.IsValid() {
		return nil, fmt.Errorf("%w: invalid format: %q", domain.ErrInvalidFormat, format)
	}
	if err := ValidateDOT(source); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	r.logger.InfoContext(ctx, "rendering DOT",
		"engine", r.engine,
		"format", string(format),
		"source_bytes", len(source))

	cmd := exec.CommandContext(ctx, r.engine, "-T"+string(format))
	cmd.Stdin = strings.NewReader(source)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			r.logger.ErrorContext(ctx, "graphviz binary not found", "engine", r.engine)
			return nil, fmt.Errorf("%w: install the Graphviz system package (engine %q)", ErrGraphvizNotFound, r.engine)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: graphviz timed out after %s", ErrRender, r.timeout)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, fmt.Errorf("%w: graphviz failed: %s", ErrRender, detail)
	}

	out := stdout.Bytes()
	r.logger.InfoContext(ctx, "rendered DOT", "output_bytes", len(out))
	return out, nil
}
