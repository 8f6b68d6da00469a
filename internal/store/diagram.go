// Package store defines interfaces for data persistence.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/diagramgpt/diagramgpt/internal/domain"
)

// DiagramStore defines the interface for diagram persistence and the
// fingerprint-keyed artifact cache.
type DiagramStore interface {
	// Create saves a new diagram to the store.
	// Returns validation errors from the domain object wrapped in
	// ErrInvalidEntity.
	Create(ctx context.Context, diagram *domain.Diagram) error

	// GetByID retrieves a diagram by its unique ID.
	// Returns ErrDiagramNotFound if the diagram does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Diagram, error)

	// FindByPromptHash retrieves the most recent diagram matching the given
	// fingerprint, format and layout. This is the cache lookup: a hit means
	// an identical request has already been generated and rendered.
	// Returns ErrDiagramNotFound when no matching diagram exists.
	FindByPromptHash(ctx context.Context, promptHash string, format domain.Format, layout string) (*domain.Diagram, error)

	// List returns diagrams ordered by creation time descending, newest
	// first, with limit/offset pagination. An empty userID lists diagrams
	// for all users.
	List(ctx context.Context, userID string, limit, offset int) ([]*domain.Diagram, error)

	// Count returns the number of stored diagrams, optionally filtered by
	// user. An empty userID counts all diagrams.
	Count(ctx context.Context, userID string) (int, error)

	// Delete removes a diagram by ID.
	// Returns ErrDiagramNotFound if the diagram does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteOlderThan removes diagrams created before the cutoff and
	// returns the number of rows removed. Used by the retention sweeper.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// WithTx returns a new store instance using the given transaction.
	WithTx(tx DBTX) DiagramStore
}
