package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerationLog records a single generation attempt, successful or not.
// Entries are append-only: they are never mutated after creation and are
// removed only by the retention sweep.
type GenerationLog struct {
	ID           uuid.UUID  `json:"id"`
	Prompt       string     `json:"prompt"`
	PromptHash   string     `json:"prompt_hash"`
	Success      bool       `json:"success"`
	TokensUsed   *int       `json:"tokens_used,omitempty"`
	ModelUsed    string     `json:"model_used,omitempty"`
	LatencyMs    *int       `json:"latency_ms,omitempty"`
	TotalTimeMs  *int       `json:"total_time_ms,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	ErrorType    string     `json:"error_type,omitempty"`
	WasCached    bool       `json:"was_cached"`
	UserID       string     `json:"user_id,omitempty"`
	DiagramID    *uuid.UUID `json:"diagram_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewGenerationLog creates a log entry with a generated ID and timestamp.
func NewGenerationLog(prompt, promptHash string, success bool) *GenerationLog {
	return &GenerationLog{
		ID:         uuid.New(),
		Prompt:     prompt,
		PromptHash: promptHash,
		Success:    success,
		CreatedAt:  time.Now().UTC(),
	}
}

// Validate checks that the log entry holds consistent data.
func (l *GenerationLog) Validate() error {
	if l.ID == uuid.Nil {
		return fmt.Errorf("%w: log ID", ErrInvalidID)
	}

	if l.Prompt == "" {
		return ErrEmptyPrompt
	}

	if len(l.PromptHash) != 64 {
		return fmt.Errorf("%w: prompt hash must be 64 hex characters", ErrValidation)
	}

	return nil
}

// UsageStats aggregates generation log entries over a time window for
// analytics and cost tracking.
type UsageStats struct {
	TotalRequests      int     `json:"total_requests"`
	TotalTokens        int     `json:"total_tokens"`
	AvgLatencyMs       float64 `json:"avg_latency_ms"`
	SuccessfulRequests int     `json:"successful_requests"`
	CachedRequests     int     `json:"cached_requests"`
	SuccessRate        float64 `json:"success_rate"`
	CacheHitRate       float64 `json:"cache_hit_rate"`
	PeriodDays         int     `json:"period_days"`
}
