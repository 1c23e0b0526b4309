package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadThemeMissingFileIsUnset(t *testing.T) {
	s := Store{Path: filepath.Join(t.TempDir(), "prefs.toml")}
	got, err := s.LoadTheme()
	require.NoError(t, err)
	require.Equal(t, ThemeUnset, got)
}

func TestSaveAndLoadTheme(t *testing.T) {
	s := Store{Path: filepath.Join(t.TempDir(), "nested", "prefs.toml")}
	require.NoError(t, s.SaveTheme(ThemeDark))
	got, err := s.LoadTheme()
	require.NoError(t, err)
	require.Equal(t, ThemeDark, got)

	require.NoError(t, s.SaveTheme(got.Toggle()))
	got, err = s.LoadTheme()
	require.NoError(t, err)
	require.Equal(t, ThemeLight, got)
}

func TestLoadThemeIgnoresUnknownValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte(`theme = "sepia"`), 0o600))
	got, err := Store{Path: path}.LoadTheme()
	require.NoError(t, err)
	require.Equal(t, ThemeUnset, got)
}

func TestResolve(t *testing.T) {
	dark := func() bool { return true }
	light := func() bool { return false }
	require.Equal(t, ThemeDark, Resolve(ThemeUnset, dark))
	require.Equal(t, ThemeLight, Resolve(ThemeUnset, light))
	require.Equal(t, ThemeLight, Resolve(ThemeUnset, nil))
	require.Equal(t, ThemeLight, Resolve(ThemeLight, dark), "stored preference wins")
	require.Equal(t, ThemeDark, Resolve(ThemeDark, light))
}
