package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database  DatabaseConfig
	UI        UIConfig
	Ledger    LedgerConfig
	Bootstrap BootstrapConfig
	Session   SessionConfig
	Log       LogConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
	Timezone       string
	RTL            bool   `mapstructure:"rtl"`
	PrefsPath      string `mapstructure:"prefs_path"`
	RecentLimit    int    `mapstructure:"recent_limit"`
	ActivityLimit  int    `mapstructure:"activity_limit"`
}

// LedgerConfig holds rules for the local backend.
type LedgerConfig struct {
	DefaultPrice         float64       `mapstructure:"default_price"`
	AllowNegativeBalance bool          `mapstructure:"allow_negative_balance"`
	CallTimeout          time.Duration `mapstructure:"call_timeout"`
}

// BootstrapConfig names the admin created on an empty database.
type BootstrapConfig struct {
	AdminEmail string `mapstructure:"admin_email"`
	AdminName  string `mapstructure:"admin_name"`
}

// SessionConfig optionally signs a profile in at startup.
type SessionConfig struct {
	Email string
}

// LogConfig points the standard logger at a file; the terminal is owned by the UI.
type LogConfig struct {
	Path string
}

// Load reads configuration from file and env. Env var overrides use prefix CANTEEN_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("CANTEEN_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "canteen"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("CANTEEN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// an explicitly named file must exist; the default location is optional
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return normalize(c), nil
}

func setDefaults(v *viper.Viper) {
	home := os.Getenv("HOME")
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "canteen", "canteen.db"))
	v.SetDefault("ui.currency_symbol", "₪")
	v.SetDefault("ui.timezone", "Asia/Jerusalem")
	v.SetDefault("ui.rtl", true)
	v.SetDefault("ui.prefs_path", defaultPrefsPath())
	v.SetDefault("ui.recent_limit", 10)
	v.SetDefault("ui.activity_limit", 50)
	v.SetDefault("ledger.default_price", 5.0)
	v.SetDefault("ledger.allow_negative_balance", true)
	v.SetDefault("ledger.call_timeout", "10s")
	v.SetDefault("bootstrap.admin_email", "")
	v.SetDefault("bootstrap.admin_name", "")
	v.SetDefault("session.email", "")
	v.SetDefault("log.path", filepath.Join(home, ".local", "share", "canteen", "canteen.log"))
}

func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "canteen", "prefs.toml")
}

func normalize(c Config) Config {
	if strings.TrimSpace(c.UI.CurrencySymbol) == "" {
		c.UI.CurrencySymbol = "₪"
	}
	if c.UI.RecentLimit <= 0 {
		c.UI.RecentLimit = 10
	}
	if c.UI.ActivityLimit <= 0 {
		c.UI.ActivityLimit = 50
	}
	if c.Ledger.DefaultPrice <= 0 {
		c.Ledger.DefaultPrice = 5.0
	}
	if c.Ledger.CallTimeout < 0 {
		c.Ledger.CallTimeout = 0
	}
	c.Bootstrap.AdminEmail = strings.ToLower(strings.TrimSpace(c.Bootstrap.AdminEmail))
	c.Session.Email = strings.ToLower(strings.TrimSpace(c.Session.Email))
	return c
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := os.Getenv("CANTEEN_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "canteen", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("ui.rtl", cfg.UI.RTL)
	v.Set("ui.prefs_path", cfg.UI.PrefsPath)
	v.Set("ui.recent_limit", cfg.UI.RecentLimit)
	v.Set("ui.activity_limit", cfg.UI.ActivityLimit)
	v.Set("ledger.default_price", cfg.Ledger.DefaultPrice)
	v.Set("ledger.allow_negative_balance", cfg.Ledger.AllowNegativeBalance)
	v.Set("ledger.call_timeout", cfg.Ledger.CallTimeout.String())
	v.Set("bootstrap.admin_email", cfg.Bootstrap.AdminEmail)
	v.Set("bootstrap.admin_name", cfg.Bootstrap.AdminName)
	v.Set("session.email", cfg.Session.Email)
	v.Set("log.path", cfg.Log.Path)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
