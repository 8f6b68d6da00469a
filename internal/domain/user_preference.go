package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Valid UI theme values.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeAuto  = "auto"
)

// UserPreference stores per-user defaults for diagram generation. The
// generation pipeline itself never touches preferences; they are consumed
// only to pre-fill request defaults.
type UserPreference struct {
	ID                  uuid.UUID  `json:"id"`
	UserID              string     `json:"user_id"`
	DefaultFormat       Format     `json:"default_format"`
	DefaultLayout       string     `json:"default_layout"`
	Theme               string     `json:"theme"`
	EnableNotifications bool       `json:"enable_notifications"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty"`
}

// NewUserPreference creates a preference record with sensible defaults.
func NewUserPreference(userID string) (*UserPreference, error) {
	p := &UserPreference{
		ID:                  uuid.New(),
		UserID:              userID,
		DefaultFormat:       FormatSVG,
		DefaultLayout:       "dot",
		Theme:               ThemeLight,
		EnableNotifications: true,
		CreatedAt:           time.Now().UTC(),
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks that the preference record holds consistent data.
func (p *UserPreference) Validate() error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("%w: preference ID", ErrInvalidID)
	}

	if p.UserID == "" {
		return fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	}

	if !p.DefaultFormat.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, p.DefaultFormat)
	}

	if !IsValidEngine(p.DefaultLayout) {
		return fmt.Errorf("%w: %q", ErrInvalidEngine, p.DefaultLayout)
	}

	switch p.Theme {
	case ThemeLight, ThemeDark, ThemeAuto:
	default:
		return fmt.Errorf("%w: invalid theme %q", ErrValidation, p.Theme)
	}

	return nil
}

// Touch updates the UpdatedAt timestamp.
func (p *UserPreference) Touch() {
	now := time.Now().UTC()
	p.UpdatedAt = &now
}
