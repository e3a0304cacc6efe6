package models

import "fmt"

// ThemeMode is the process-wide colour scheme preference.
type ThemeMode string

const (
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"
)

// ParseThemeMode validates a stored or user-supplied mode string.
func ParseThemeMode(s string) (ThemeMode, error) {
	switch ThemeMode(s) {
	case ThemeLight, ThemeDark, ThemeSystem:
		return ThemeMode(s), nil
	}
	return "", fmt.Errorf("unknown theme mode %q", s)
}
