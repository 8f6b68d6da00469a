package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when input or an entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when an output format is not svg or png.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidKind is returned when a diagram kind is not recognized.
	ErrInvalidKind = errors.New("invalid diagram kind")

	// ErrInvalidEngine is returned when a Graphviz layout engine is not in
	// the supported set.
	ErrInvalidEngine = errors.New("invalid layout engine")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyPrompt is returned when a generation prompt is empty.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrEmptySourceCode is returned when diagram source code is empty.
	ErrEmptySourceCode = errors.New("source code cannot be empty")
)
