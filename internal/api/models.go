package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/diagramgpt/diagramgpt/internal/domain"
)

// GenerateRequest is the body for all three generate endpoints.
type GenerateRequest struct {
	Prompt string `json:"prompt" validate:"required,max=2000"`
	Format string `json:"format" validate:"omitempty,oneof=svg png"`
	// Layout selects the Graphviz engine. Ignored by the gantt and wbs
	// endpoints.
	Layout string `json:"layout" validate:"omitempty,oneof=dot neato fdp sfdp twopi circo"`
	UserID string `json:"user_id" validate:"omitempty,max=255"`
}

// PreviewDiagramRequest is the body for POST /api/diagram/preview.
type PreviewDiagramRequest struct {
	DOT    string `json:"dot" validate:"required,max=50000"`
	Format string `json:"format" validate:"omitempty,oneof=svg png"`
	Layout string `json:"layout" validate:"omitempty,oneof=dot neato fdp sfdp twopi circo"`
}

// PreviewGanttRequest is the body for POST /api/gantt/preview.
type PreviewGanttRequest struct {
	MermaidCode string `json:"mermaid_code" validate:"required,max=50000"`
	Format      string `json:"format" validate:"omitempty,oneof=svg png"`
}

// PreviewWBSRequest is the body for POST /api/wbs/preview.
type PreviewWBSRequest struct {
	PlantUMLCode string `json:"plantuml_code" validate:"required,max=50000"`
	Format       string `json:"format" validate:"omitempty,oneof=svg png"`
}

// DiagramResponse is the JSON body for graphviz generate/preview responses
// when the client asks for application/json.
type DiagramResponse struct {
	DiagramDOT  string     `json:"diagram_dot"`
	ImageBase64 string     `json:"image_base64"`
	Format      string     `json:"format"`
	DiagramID   *uuid.UUID `json:"diagram_id,omitempty"`
}

// GanttResponse is the JSON body for gantt generate/preview responses.
type GanttResponse struct {
	MermaidCode string     `json:"mermaid_code"`
	ImageBase64 string     `json:"image_base64"`
	Format      string     `json:"format"`
	DiagramID   *uuid.UUID `json:"diagram_id,omitempty"`
}

// WBSResponse is the JSON body for wbs generate/preview responses.
type WBSResponse struct {
	PlantUMLCode string     `json:"plantuml_code"`
	ImageBase64  string     `json:"image_base64"`
	Format       string     `json:"format"`
	DiagramID    *uuid.UUID `json:"diagram_id,omitempty"`
}

// DiagramSummary is one history entry. The stored image is omitted to keep
// list responses small; fetch a single diagram for the full record.
type DiagramSummary struct {
	ID         uuid.UUID  `json:"id"`
	Prompt     string     `json:"prompt"`
	Kind       string     `json:"kind"`
	Format     string     `json:"format"`
	Layout     string     `json:"layout"`
	TokenCount *int       `json:"token_count,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// HistoryResponse is the paginated body for GET /api/diagram/history.
type HistoryResponse struct {
	Diagrams []DiagramSummary `json:"diagrams"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// LogsResponse is the paginated body for GET /api/diagram/logs.
type LogsResponse struct {
	Logs   []*domain.GenerationLog `json:"logs"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
}

// UpdatePreferenceRequest is the body for PUT /api/preferences/{user_id}.
// Nil fields are left unchanged.
type UpdatePreferenceRequest struct {
	DefaultFormat       *string `json:"default_format" validate:"omitempty,oneof=svg png"`
	DefaultLayout       *string `json:"default_layout" validate:"omitempty,oneof=dot neato fdp sfdp twopi circo"`
	Theme               *string `json:"theme" validate:"omitempty,oneof=light dark auto"`
	EnableNotifications *bool   `json:"enable_notifications"`
}

// HealthResponse is the body for the health endpoints.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database,omitempty"`
	Graphviz string `json:"graphviz,omitempty"`
	Provider string `json:"provider,omitempty"`
}

func toDiagramSummary(d *domain.Diagram) DiagramSummary {
	return DiagramSummary{
		ID:         d.ID,
		Prompt:     d.Prompt,
		Kind:       string(d.Kind),
		Format:     string(d.Format),
		Layout:     d.Layout,
		TokenCount: d.TokenCount,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}
