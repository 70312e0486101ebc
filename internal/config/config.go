// Package config loads the server configuration from YAML with sane
// defaults, so a bare binary works with no config file at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config configures the edit-session server.
type Config struct {
	// StoragePath is the SQLite database file holding the autosave slot.
	// Default: <user cache dir>/imagesession/autosave.db.
	StoragePath string `yaml:"storage_path"`

	// AutosaveQuietMS is the debounce quiet period before an autosave
	// write, in milliseconds. Default: 2000.
	AutosaveQuietMS int `yaml:"autosave_quiet_ms"`

	// Gemini configures the remote analysis service. Analysis tools are
	// disabled when no API key is available.
	Gemini GeminiConfig `yaml:"gemini"`

	// LogLevel is one of debug, info, warn, error. Default: info.
	LogLevel string `yaml:"log_level"`
}

// GeminiConfig holds the remote model settings.
type GeminiConfig struct {
	// APIKey authenticates against the Generative Language API. Falls back
	// to the GEMINI_API_KEY environment variable when empty.
	APIKey string `yaml:"api_key"`

	// Model is the generation model name. Default: gemini-2.0-flash.
	Model string `yaml:"model"`
}

func (c *Config) defaults() {
	if c.StoragePath == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			dir = os.TempDir()
		}
		c.StoragePath = filepath.Join(dir, "imagesession", "autosave.db")
	}
	if c.AutosaveQuietMS <= 0 {
		c.AutosaveQuietMS = 2000
	}
	if c.Gemini.APIKey == "" {
		c.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// AutosaveQuiet returns the quiet period as a duration.
func (c *Config) AutosaveQuiet() time.Duration {
	return time.Duration(c.AutosaveQuietMS) * time.Millisecond
}

// Load reads the YAML file at path, or returns the defaults when path is
// empty. A missing or malformed file is an error; an absent optional field
// is not.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	c.defaults()
	return &c, nil
}
