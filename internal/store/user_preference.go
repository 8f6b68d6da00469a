package store

import (
	"context"

	"github.com/diagramgpt/diagramgpt/internal/domain"
)

// UserPreferenceStore defines the interface for per-user rendering defaults.
type UserPreferenceStore interface {
	// GetByUserID retrieves the preferences for a user.
	// Returns ErrPreferenceNotFound if none have been saved.
	GetByUserID(ctx context.Context, userID string) (*domain.UserPreference, error)

	// Upsert creates or updates the preferences for a user.
	Upsert(ctx context.Context, pref *domain.UserPreference) error

	// Delete removes the preferences for a user, reverting them to defaults.
	// Returns ErrPreferenceNotFound if none exist.
	Delete(ctx context.Context, userID string) error

	// WithTx returns a new store instance using the given transaction.
	WithTx(tx DBTX) UserPreferenceStore
}
