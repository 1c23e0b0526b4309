package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CANTEEN_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "₪", cfg.UI.CurrencySymbol)
	require.Equal(t, "Asia/Jerusalem", cfg.UI.Timezone)
	require.True(t, cfg.UI.RTL)
	require.Equal(t, 10, cfg.UI.RecentLimit)
	require.Equal(t, 5.0, cfg.Ledger.DefaultPrice)
	require.True(t, cfg.Ledger.AllowNegativeBalance)
	require.Equal(t, 10*time.Second, cfg.Ledger.CallTimeout)
	require.Equal(t, filepath.Join(home, ".local", "share", "canteen", "canteen.db"), cfg.Database.Path)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
[ui]
currency_symbol = "$"
recent_limit = 3

[ledger]
default_price = 7.5
call_timeout = "2s"

[bootstrap]
admin_email = "  Boss@Example.com "
admin_name = "Boss"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	t.Setenv("CANTEEN_CONFIG", path)
	t.Setenv("CANTEEN_LEDGER_ALLOW_NEGATIVE_BALANCE", "false")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "$", cfg.UI.CurrencySymbol)
	require.Equal(t, 3, cfg.UI.RecentLimit)
	require.Equal(t, 7.5, cfg.Ledger.DefaultPrice)
	require.Equal(t, 2*time.Second, cfg.Ledger.CallTimeout)
	require.False(t, cfg.Ledger.AllowNegativeBalance)
	require.Equal(t, "boss@example.com", cfg.Bootstrap.AdminEmail)
	require.Equal(t, "Boss", cfg.Bootstrap.AdminName)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	t.Setenv("CANTEEN_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))
	_, err := Load()
	require.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	t.Setenv("CANTEEN_CONFIG", path)

	_, err := Load()
	require.Error(t, err) // file does not exist yet

	cfg := Config{}
	cfg.Database.Path = "/tmp/canteen.db"
	cfg.UI.CurrencySymbol = "€"
	cfg.UI.RecentLimit = 4
	cfg.Ledger.DefaultPrice = 6
	cfg.Ledger.CallTimeout = 3 * time.Second
	require.NoError(t, Save(cfg))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/canteen.db", got.Database.Path)
	require.Equal(t, "€", got.UI.CurrencySymbol)
	require.Equal(t, 4, got.UI.RecentLimit)
	require.Equal(t, 3*time.Second, got.Ledger.CallTimeout)
}
