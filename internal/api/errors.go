// Package api contains the HTTP handlers, request/response models, and
// error mapping for the diagram generation API.
package api

import (
	"errors"
	"net/http"

	"github.com/diagramgpt/diagramgpt/internal/domain"
	"github.com/diagramgpt/diagramgpt/internal/llm"
	"github.com/diagramgpt/diagramgpt/internal/render"
	"github.com/diagramgpt/diagramgpt/internal/store"
)

// ErrRateLimited is returned when a client exceeds its request allowance.
var ErrRateLimited = errors.New("rate limit exceeded")

// MapErrorToStatusCode maps domain, store, render, and LLM errors to the
// appropriate HTTP status code. Unknown errors map to 500.
func MapErrorToStatusCode(err error) int {
	switch {
	// Client-side validation failures
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, domain.ErrInvalidEngine),
		errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrEmptyPrompt),
		errors.Is(err, domain.ErrEmptySourceCode),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests

	// Upstream and rendering failures are server errors from the
	// client's point of view.
	case errors.Is(err, llm.ErrLLM),
		errors.Is(err, render.ErrRender),
		errors.Is(err, render.ErrGraphvizNotFound):
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for an error. Internal
// details like SQL state or upstream response bodies never leak through.
func GetSafeErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyPrompt):
		return "Prompt cannot be empty"
	case errors.Is(err, domain.ErrEmptySourceCode):
		return "Diagram source code cannot be empty"
	case errors.Is(err, domain.ErrInvalidFormat):
		return "Format must be svg or png"
	case errors.Is(err, domain.ErrInvalidEngine):
		return "Unsupported layout engine"
	case errors.Is(err, domain.ErrInvalidKind):
		return "Unsupported diagram kind"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, domain.ErrValidation):
		return "Invalid input"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"
	case errors.Is(err, ErrRateLimited):
		return "Too many requests, please try again later"
	case errors.Is(err, render.ErrGraphvizNotFound):
		return "Diagram rendering is unavailable"
	case errors.Is(err, render.ErrRender):
		return "Failed to render diagram"
	case errors.Is(err, llm.ErrLLM):
		return "Failed to generate diagram"
	default:
		return "An internal error occurred"
	}
}
