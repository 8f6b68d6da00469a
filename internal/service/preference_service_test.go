package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diagramgpt/diagramgpt/internal/domain"
	"github.com/diagramgpt/diagramgpt/internal/store"
)

// mockPreferenceStore is an in-memory store.UserPreferenceStore.
type mockPreferenceStore struct {
	prefs map[string]*domain.UserPreference
}

func newMockPreferenceStore() *mockPreferenceStore {
	return &mockPreferenceStore{prefs: map[string]*domain.UserPreference{}}
}

func (m *mockPreferenceStore) GetByUserID(_ context.Context, userID string) (*domain.UserPreference, error) {
	p, ok := m.prefs[userID]
	if !ok {
		return nil, store.ErrPreferenceNotFound
	}
	return p, nil
}

func (m *mockPreferenceStore) Upsert(_ context.Context, p *domain.UserPreference) error {
	m.prefs[p.UserID] = p
	return nil
}

func (m *mockPreferenceStore) Delete(_ context.Context, userID string) error {
	if _, ok := m.prefs[userID]; !ok {
		return store.ErrPreferenceNotFound
	}
	delete(m.prefs, userID)
	return nil
}

func (m *mockPreferenceStore) WithTx(_ store.DBTX) store.UserPreferenceStore { return m }

func TestGetOrCreateCreatesDefaults(t *testing.T) {
	t.Parallel()

	prefsStore := newMockPreferenceStore()
	svc := NewPreferenceService(prefsStore, nil)

	pref, err := svc.GetOrCreate(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "user-1", pref.UserID)
	assert.Equal(t, domain.FormatSVG, pref.DefaultFormat)
	assert.Equal(t, "dot", pref.DefaultLayout)
	assert.Equal(t, domain.ThemeLight, pref.Theme)

	// The defaults were persisted; a second call returns the same record.
	again, err := svc.GetOrCreate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, pref.ID, again.ID)
}

func TestGetDoesNotCreateDefaults(t *testing.T) {
	t.Parallel()

	prefsStore := newMockPreferenceStore()
	svc := NewPreferenceService(prefsStore, nil)

	_, err := svc.Get(context.Background(), "user-5")
	assert.ErrorIs(t, err, store.ErrPreferenceNotFound)
	assert.Empty(t, prefsStore.prefs)
}

func TestUpdateAppliesPartialChanges(t *testing.T) {
	t.Parallel()

	prefsStore := newMockPreferenceStore()
	svc := NewPreferenceService(prefsStore, nil)

	format := "png"
	theme := domain.ThemeDark

	pref, err := svc.Update(context.Background(), "user-2", PreferenceUpdate{
		DefaultFormat: &format,
		Theme:         &theme,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.FormatPNG, pref.DefaultFormat)
	assert.Equal(t, domain.ThemeDark, pref.Theme)
	// Unspecified fields keep their defaults.
	assert.Equal(t, "dot", pref.DefaultLayout)
	assert.NotNil(t, pref.UpdatedAt)
}

func TestUpdateRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	svc := NewPreferenceService(newMockPreferenceStore(), nil)

	badFormat := "pdf"
	_, err := svc.Update(context.Background(), "user-3", PreferenceUpdate{DefaultFormat: &badFormat})
	assert.ErrorIs(t, err, domain.ErrInvalidFormat)

	badEngine := "latex"
	_, err = svc.Update(context.Background(), "user-3", PreferenceUpdate{DefaultLayout: &badEngine})
	assert.ErrorIs(t, err, domain.ErrInvalidEngine)

	badTheme := "sepia"
	_, err = svc.Update(context.Background(), "user-3", PreferenceUpdate{Theme: &badTheme})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeletePreferences(t *testing.T) {
	t.Parallel()

	prefsStore := newMockPreferenceStore()
	svc := NewPreferenceService(prefsStore, nil)

	_, err := svc.GetOrCreate(context.Background(), "user-4")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "user-4"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "user-4"), store.ErrPreferenceNotFound)
}
