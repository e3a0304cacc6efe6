package state

import (
	"context"

	"github.com/example/portfolio/internal/apperror"
	"github.com/example/portfolio/internal/models"
)

// SetTheme replaces the theme mode.
type SetTheme struct {
	Mode models.ThemeMode
}

func (SetTheme) Type() string { return "theme/setTheme" }

func (a SetTheme) run(_ context.Context, s *Store) error {
	mode, err := models.ParseThemeMode(string(a.Mode))
	if err != nil {
		return apperror.Validation(err.Error(), err)
	}
	s.commit(func(st *State) { st.Theme.Mode = mode })
	return nil
}

// ToggleTheme cycles system -> light -> dark -> light. It never returns to
// system.
type ToggleTheme struct{}

func (ToggleTheme) Type() string { return "theme/toggleTheme" }

func (ToggleTheme) run(_ context.Context, s *Store) error {
	s.commit(func(st *State) { st.Theme.Mode = NextTheme(st.Theme.Mode) })
	return nil
}

// NextTheme returns the mode ToggleTheme moves to from mode.
func NextTheme(mode models.ThemeMode) models.ThemeMode {
	switch mode {
	case models.ThemeSystem:
		return models.ThemeLight
	case models.ThemeLight:
		return models.ThemeDark
	}
	return models.ThemeLight
}
