// Package prefs persists user preferences in the local sqlite database.
package prefs

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastreckless/frb/internal/database/repository"
)

// ThemeKey is the preference key holding the colour scheme.
const ThemeKey = "frb_theme"

// Theme is a colour scheme name.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Store reads and writes preferences.
type Store struct {
	repo *repository.PreferenceRepo
}

func NewStore(db *sql.DB) *Store {
	return &Store{repo: repository.NewPreferenceRepo(db)}
}

// Theme returns the stored theme, or ThemeDark when nothing valid is stored
// or the store cannot be read.
func (s *Store) Theme(ctx context.Context) Theme {
	if s == nil || s.repo == nil {
		return ThemeDark
	}
	p, ok, err := s.repo.Get(ctx, ThemeKey)
	if err != nil || !ok {
		return ThemeDark
	}
	switch Theme(p.Value) {
	case ThemeLight:
		return ThemeLight
	default:
		return ThemeDark
	}
}

// SetTheme stores t.
func (s *Store) SetTheme(ctx context.Context, t Theme) error {
	if t != ThemeDark && t != ThemeLight {
		return fmt.Errorf("unknown theme %q", t)
	}
	if s == nil || s.repo == nil {
		return fmt.Errorf("preferences store not configured")
	}
	if err := s.repo.Set(ctx, ThemeKey, string(t)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}
