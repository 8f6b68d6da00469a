package store

import (
	"context"
	"time"

	"github.com/diagramgpt/diagramgpt/internal/domain"
)

// GenerationLogStore defines the interface for generation audit records.
// Writes are best-effort from the caller's perspective; a failed log write
// never fails the generation it describes.
type GenerationLogStore interface {
	// Create saves a new generation log entry.
	Create(ctx context.Context, entry *domain.GenerationLog) error

	// List returns log entries ordered by creation time descending with
	// limit/offset pagination.
	List(ctx context.Context, limit, offset int) ([]*domain.GenerationLog, error)

	// Stats aggregates usage counters over entries created in the last
	// `days` days. An empty userID aggregates across all users.
	Stats(ctx context.Context, userID string, days int) (*domain.UsageStats, error)

	// DeleteOlderThan removes log entries created before the cutoff and
	// returns the number of rows removed. Used by the retention sweeper.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// WithTx returns a new store instance using the given transaction.
	WithTx(tx DBTX) GenerationLogStore
}
