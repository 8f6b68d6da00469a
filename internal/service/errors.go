package service

import "fmt"

// DiagramGenerationError is the umbrella error for failures in the
// generation pipeline. It carries a caller-safe message and wraps the
// underlying cause so errors.Is can still classify it (validation, llm,
// render, store).
type DiagramGenerationError struct {
	// Message is safe to expose to API clients.
	Message string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *DiagramGenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *DiagramGenerationError) Unwrap() error {
	return e.Err
}

// NewDiagramGenerationError creates a DiagramGenerationError wrapping err.
func NewDiagramGenerationError(message string, err error) *DiagramGenerationError {
	return &DiagramGenerationError{Message: message, Err: err}
}
