package render

import (
	"errors"
	"io"
	"strings"
)

var (
	// ErrRender indicates a rendering backend failed to produce an image.
	ErrRender = errors.New("diagram rendering failed")

	// ErrGraphvizNotFound indicates the Graphviz binaries are not installed.
	ErrGraphvizNotFound = errors.New("graphviz executable not found")
)

// errorBodySnippet reads up to 200 bytes of an error response body so the
// backend's own diagnostic ends up in the returned error.
func errorBodySnippet(body io.Reader) string {
	snippet, err := io.ReadAll(io.LimitReader(body, 200))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(snippet))
}
