package render

import (
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/diagramgpt/diagramgpt/internal/domain"
)

// PlantUMLRenderer renders PlantUML WBS source through a PlantUML server.
// The source is deflate-compressed and encoded with PlantUML's base64
// variant into the request path.
type PlantUMLRenderer struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewPlantUMLRenderer creates a renderer against the given PlantUML server
// base URL (e.g. "https://www.plantuml.com/plantuml").
func NewPlantUMLRenderer(baseURL string, timeout time.Duration, log *slog.Logger) *PlantUMLRenderer {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &PlantUMLRenderer{
		baseURL: strings.TrimRight(baseURL, "/"),
		// The public PlantUML server redirects between mirrors, so
		// redirects must be followed.
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// ValidateWBS performs basic checks on PlantUML WBS source.
func ValidateWBS(source string) error {
	source = strings.TrimSpace(source)

	if len(source) < 10 {
		return fmt.Errorf("%w: PlantUML code too short", domain.ErrValidation)
	}

	if !strings.HasPrefix(source, "@startwbs") && !strings.HasPrefix(source, "@startuml") {
		return fmt.Errorf("%w: PlantUML code must start with '@startwbs' or '@startuml'", domain.ErrValidation)
	}

	if !strings.HasSuffix(source, "@endwbs") && !strings.HasSuffix(source, "@enduml") {
		return fmt.Errorf("%w: PlantUML code must end with '@endwbs' or '@enduml'", domain.ErrValidation)
	}

	return nil
}

// plantumlAlphabet is the base64 variant used by PlantUML text encoding.
// See https://plantuml.com/text-encoding.
const plantumlAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

// EncodeSource compresses PlantUML source with raw deflate and encodes it
// with the PlantUML alphabet, producing a path segment for the server URL.
func EncodeSource(source string) (string, error) {
	var compressed bytes.Buffer
	writer := zlib.NewWriter(&compressed)
	if _, err := writer.Write([]byte(source)); err != nil {
		return "", fmt.Errorf("failed to compress plantuml source: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to compress plantuml source: %w", err)
	}

	// PlantUML expects raw deflate: strip the 2-byte zlib header and the
	// 4-byte Adler-32 trailer.
	data := compressed.Bytes()
	if len(data) < 6 {
		return "", fmt.Errorf("compressed plantuml source too short")
	}
	data = data[2 : len(data)-4]

	var b strings.Builder
	for i := 0; i < len(data); i += 3 {
		var b1, b2, b3 byte
		b1 = data[i]
		if i+1 < len(data) {
			b2 = data[i+1]
		}
		if i+2 < len(data) {
			b3 = data[i+2]
		}
		b.WriteByte(plantumlAlphabet[(b1>>2)&0x3F])
		b.WriteByte(plantumlAlphabet[((b1&0x3)<<4|b2>>4)&0x3F])
		b.WriteByte(plantumlAlphabet[((b2&0xF)<<2|b3>>6)&0x3F])
		b.WriteByte(plantumlAlphabet[b3&0x3F])
	}
	return b.String(), nil
}

// Render implements Renderer via GET {base}/{svg|png}/{encoded}.
func (r *PlantUMLRenderer) Render(ctx context.Context, source string, format domain.Format) ([]byte, error) {
	if !format.IsValid() {
		return nil, fmt.Errorf("%w: invalid format: %q", domain.ErrInvalidFormat, format)
	}
	if err := ValidateWBS(source); err != nil {
		return nil, err
	}

	encoded, err := EncodeSource(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	url := fmt.Sprintf("%s/%s/%s", r.baseURL, string(format), encoded)

	r.logger.InfoContext(ctx, "rendering PlantUML WBS diagram",
		"format", string(format),
		"source_bytes", len(source))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build plantuml request: %v", ErrRender, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to plantuml server: %v", ErrRender, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		if snippet := errorBodySnippet(resp.Body); snippet != "" {
			return nil, fmt.Errorf("%w: plantuml server returned status %d: %s", ErrRender, resp.StatusCode, snippet)
		}
		return nil, fmt.Errorf("%w: plantuml server returned status %d", ErrRender, resp.StatusCode)
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read plantuml response: %v", ErrRender, err)
	}

	r.logger.InfoContext(ctx, "rendered PlantUML WBS diagram", "output_bytes", len(out))
	return out, nil
}
