package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/diagramgpt/diagramgpt/internal/domain"
	"github.com/diagramgpt/diagramgpt/internal/platform/logger"
	"github.com/diagramgpt/diagramgpt/internal/store"
)

// PreferenceUpdate carries the optional fields of a preference update.
// Nil fields are left unchanged.
type PreferenceUpdate struct {
	DefaultFormat       *string
	DefaultLayout       *string
	Theme               *string
	EnableNotifications *bool
}

// PreferenceService manages per-user rendering defaults.
type PreferenceService struct {
	prefs  store.UserPreferenceStore
	logger *slog.Logger
}

// NewPreferenceService creates a preference service.
func NewPreferenceService(prefs store.UserPreferenceStore, log *slog.Logger) *PreferenceService {
	if log == nil {
		log = slog.Default()
	}
	return &PreferenceService{prefs: prefs, logger: log}
}

// Get returns the stored preferences for a user without creating defaults.
// Returns store.ErrPreferenceNotFound when none exist.
func (s *PreferenceService) Get(ctx context.Context, userID string) (*domain.UserPreference, error) {
	return s.prefs.GetByUserID(ctx, userID)
}

// GetOrCreate returns the stored preferences for a user, creating and
// persisting defaults when none exist yet.
func (s *PreferenceService) GetOrCreate(ctx context.Context, userID string) (*domain.UserPreference, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	pref, err := s.prefs.GetByUserID(ctx, userID)
	if err == nil {
		return pref, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	pref, err = domain.NewUserPreference(userID)
	if err != nil {
		return nil, err
	}
	if err := s.prefs.Upsert(ctx, pref); err != nil {
		return nil, err
	}

	log.Info("created default preferences", slog.String("user_id", userID))
	return pref, nil
}

// Update applies the non-nil fields of the update to the user's preferences,
// creating defaults first when none exist.
func (s *PreferenceService) Update(ctx context.Context, userID string, update PreferenceUpdate) (*domain.UserPreference, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	pref, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.DefaultFormat != nil {
		format, err := domain.ParseFormat(*update.DefaultFormat)
		if err != nil {
			return nil, err
		}
		pref.DefaultFormat = format
	}
	if update.DefaultLayout != nil {
		if !domain.IsValidEngine(*update.DefaultLayout) {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidEngine, *update.DefaultLayout)
		}
		pref.DefaultLayout = *update.DefaultLayout
	}
	if update.Theme != nil {
		pref.Theme = *update.Theme
	}
	if update.EnableNotifications != nil {
		pref.EnableNotifications = *update.EnableNotifications
	}

	pref.Touch()
	if err := pref.Validate(); err != nil {
		return nil, err
	}
	if err := s.prefs.Upsert(ctx, pref); err != nil {
		return nil, err
	}

	log.Info("updated preferences", slog.String("user_id", userID))
	return pref, nil
}

// Delete removes the stored preferences for a user.
// Returns store.ErrPreferenceNotFound when none exist.
func (s *PreferenceService) Delete(ctx context.Context, userID string) error {
	return s.prefs.Delete(ctx, userID)
}
