package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	UI       UIConfig       `mapstructure:"ui"`
}

// APIConfig holds bank service settings.
type APIConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	ReadRetries int           `mapstructure:"read_retries"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	KeybindingsPath string `mapstructure:"keybindings_path"`
	TimeFormat      string `mapstructure:"time_format"`
}

// Path returns the config file location: $FRB_CONFIG or
// ~/.config/frb/config.toml.
func Path() string {
	if p := os.Getenv("FRB_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "frb", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix FRB_.
func Load() (Config, error) {
	v := viper.New()

	home := os.Getenv("HOME")
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.read_retries", 0)
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "frb", "frb.db"))
	v.SetDefault("log.path", filepath.Join(home, ".local", "state", "frb", "frb.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("ui.keybindings_path", filepath.Join(home, ".config", "frb", "keybindings.toml"))
	v.SetDefault("ui.time_format", "2006-01-02 15:04:05")

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix("FRB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// a missing file is fine; a broken one is not
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(Path()); statErr == nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		return Config{}, fmt.Errorf("api.base_url must not be empty")
	}
	if c.API.Timeout < 0 {
		return Config{}, fmt.Errorf("api.timeout must not be negative")
	}
	return c, nil
}
