package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Diagram is a persisted generation artifact: the prompt that produced it,
// the generated source code, and optionally the rendered image. Rows are
// looked up by prompt hash to serve identical requests from cache.
type Diagram struct {
	ID         uuid.UUID   `json:"id"`
	Prompt     string      `json:"prompt"`
	PromptHash string      `json:"prompt_hash"`
	Kind       DiagramKind `json:"kind"`
	SourceCode string      `json:"source_code"`
	Format     Format      `json:"format"`
	// Layout is the Graphviz engine name for graphviz diagrams, or the
	// renderer tag (mermaid, plantuml) for the remote kinds.
	Layout string `json:"layout"`
	// ImageData holds the base64-encoded rendered image, when stored.
	ImageData        string     `json:"image_data,omitempty"`
	UserID           string     `json:"user_id,omitempty"`
	TokenCount       *int       `json:"token_count,omitempty"`
	GenerationTimeMs *int       `json:"generation_time_ms,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// NewDiagram creates a new Diagram with a generated ID and creation
// timestamp. Returns an error if validation fails.
func NewDiagram(
	prompt, promptHash string,
	kind DiagramKind,
	sourceCode string,
	format Format,
	layout string,
) (*Diagram, error) {
	d := &Diagram{
		ID:         uuid.New(),
		Prompt:     prompt,
		PromptHash: promptHash,
		Kind:       kind,
		SourceCode: sourceCode,
		Format:     format,
		Layout:     layout,
		CreatedAt:  time.Now().UTC(),
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}

	return d, nil
}

// Validate checks that the Diagram holds consistent data.
func (d *Diagram) Validate() error {
	if d.ID == uuid.Nil {
		return fmt.Errorf("%w: diagram ID", ErrInvalidID)
	}

	if d.Prompt == "" {
		return ErrEmptyPrompt
	}

	if len(d.PromptHash) != 64 {
		return fmt.Errorf("%w: prompt hash must be 64 hex characters", ErrValidation)
	}

	if !d.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, d.Kind)
	}

	if d.SourceCode == "" {
		return ErrEmptySourceCode
	}

	if !d.Format.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, d.Format)
	}

	if d.Kind == KindGraphviz && !IsValidEngine(d.Layout) {
		return fmt.Errorf("%w: %q", ErrInvalidEngine, d.Layout)
	}

	return nil
}

// Touch updates the UpdatedAt timestamp.
func (d *Diagram) Touch() {
	now := time.Now().UTC()
	d.UpdatedAt = &now
}
