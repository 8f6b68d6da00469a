package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/diagramgpt/diagramgpt/internal/domain"
)

// MermaidRenderer renders Mermaid Gantt source through the mermaid.ink API.
// The service takes URL-safe base64 of the raw Mermaid text in the path and
// returns the rendered image directly.
type MermaidRenderer struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewMermaidRenderer creates a renderer against the given mermaid.ink base
// URL (e.g. "https://mermaid.ink").
func NewMermaidRenderer(baseURL string, timeout time.Duration, log *slog.Logger) *MermaidRenderer {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MermaidRenderer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// ValidateGantt performs basic checks on Mermaid Gantt source.
func ValidateGantt(source string) error {
	source = strings.TrimSpace(source)

	if len(source) < 10 {
		return fmt.Errorf("%w: Mermaid code too short", domain.ErrValidation)
	}

	if !strings.Contains(strings.ToLower(source), "gantt") {
		return fmt.Errorf("%w: Mermaid code must contain 'gantt' declaration", domain.ErrValidation)
	}

	return nil
}

// Render implements Renderer via GET {base}/svg/{b64} or {base}/img/{b64}.
func (r *MermaidRenderer) Render(ctx context.Context, source string, format domain.Format) ([]byte, error) {
	if !format.IsValid() {
		return nil, fmt.Errorf("%w: invalid format: %q", domain.ErrInvalidFormat, format)
	}
	if err := ValidateGantt(source); err != nil {
		return nil, err
	}

	// mermaid.ink serves SVG from /svg/ and raster formats from /img/.
	pathPrefix := "svg"
	if format == domain.FormatPNG {
		pathPrefix = "img"
	}

	encoded := base64.URLEncoding.EncodeToString([]byte(source))
	url := fmt.Sprintf("%s/%s/%s", r.baseURL, pathPrefix, encoded)

	r.logger.InfoContext(ctx, "rendering Mermaid Gantt chart",
		"format", string(format),
		"source_bytes", len(source))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build mermaid.ink request: %v", ErrRender, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to mermaid.ink: %v", ErrRender, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		if snippet := errorBodySnippet(resp.Body); snippet != "" {
			return nil, fmt.Errorf("%w: mermaid.ink returned status %d: %s", ErrRender, resp.StatusCode, snippet)
		}
		return nil, fmt.Errorf("%w: mermaid.ink returned status %d", ErrRender, resp.StatusCode)
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read mermaid.ink response: %v", ErrRender, err)
	}

	r.logger.InfoContext(ctx, "rendered Mermaid Gantt chart", "output_bytes", len(out))
	return out, nil
}
