// Package config loads and saves the loanlens TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Environment overrides, applied after the file.
const (
	EnvData  = "LOANLENS_DATA"
	EnvModel = "LOANLENS_MODEL"
)

// Config holds all loanlens configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Model      ModelConfig      `toml:"model"`
	Appearance AppearanceConfig `toml:"appearance"`
	Log        LogConfig        `toml:"log"`
	Server     ServerConfig     `toml:"server"`
}

// GeneralConfig holds dataset preferences.
type GeneralConfig struct {
	DataPath string `toml:"data_path,omitempty"`
	Cache    bool   `toml:"cache"`
	History  bool   `toml:"history"`
}

// ModelConfig points at the classifier artifacts. Empty paths select the
// bundled model.
type ModelConfig struct {
	Path         string `toml:"path,omitempty"`
	FeaturesPath string `toml:"features_path,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme" validate:"oneof=flexoki-dark catppuccin-mocha tokyo-night terminal"`
}

// LogConfig controls the diagnostic logger.
type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=console json"`
}

// ServerConfig configures `loanlens serve`.
type ServerConfig struct {
	Addr string `toml:"addr" validate:"required,hostname_port"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Cache:   true,
			History: true,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8787",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "loanlens")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "loanlens")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied on top.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnv(&cfg)
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvData); v != "" {
		cfg.General.DataPath = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		cfg.Model.Path = v
	}
}

var validate = validator.New()

// Validate checks enumerated settings.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config %s: %w", ConfigPath(), err)
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
