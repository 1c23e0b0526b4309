// Package prefs persists per-terminal UI preferences in a small TOML file.
package prefs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Theme is a light/dark preference.
type Theme string

const (
	ThemeUnset Theme = ""
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type file struct {
	Theme Theme `toml:"theme"`
}

// Store reads and writes the preference file at Path.
type Store struct {
	Path string
}

// LoadTheme returns the stored theme, or ThemeUnset when nothing valid is stored.
func (s Store) LoadTheme() (Theme, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return ThemeUnset, nil
		}
		return ThemeUnset, err
	}
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return ThemeUnset, fmt.Errorf("parse %s: %w", filepath.Base(s.Path), err)
	}
	switch f.Theme {
	case ThemeLight, ThemeDark:
		return f.Theme, nil
	default:
		return ThemeUnset, nil
	}
}

// SaveTheme writes the theme atomically.
func (s Store) SaveTheme(t Theme) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(file{Theme: t}); err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}

// Resolve picks the theme to apply on load: a stored preference wins, otherwise
// the environment's detection decides. Resolve never writes.
func Resolve(stored Theme, envPrefersDark func() bool) Theme {
	if stored == ThemeLight || stored == ThemeDark {
		return stored
	}
	if envPrefersDark != nil && envPrefersDark() {
		return ThemeDark
	}
	return ThemeLight
}

// Toggle flips between light and dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
