// Package configuration handles loading and persisting the application
// config as JSON in the per-user dot directory.
package configuration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kodahr27/ollama-chat-app/pkg/utils"
)

const (
	ConfigVersion  = "1.0"
	ConfigFileName = "config.json"

	DefaultModel   = "llama3.2"
	DefaultWebPort = 8745
)

// Config is the persisted application configuration.
type Config struct {
	Version string `json:"version"`

	// Ollama connection
	OllamaHost string `json:"ollama_host,omitempty"` // empty = OLLAMA_HOST env / default
	Model      string `json:"model"`

	// Web UI
	WebPort int `json:"web_port"`

	// Storage paths (default under ~/.ollama-chat)
	ProjectDBPath string `json:"project_db_path,omitempty"`
	HistoryDBPath string `json:"history_db_path,omitempty"`

	// SkipPrompt disables interactive confirmation prompts.
	SkipPrompt bool `json:"skip_prompt,omitempty"`
}

// DefaultConfig returns a config with sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: ConfigVersion,
		Model:   DefaultModel,
		WebPort: DefaultWebPort,
	}
}

func configPath() string {
	return filepath.Join(utils.AppDir(), ConfigFileName)
}

// Load reads the config file, falling back to defaults when it does not
// exist or cannot be parsed.
func Load() *Config {
	cfg := DefaultConfig()
	data, err := os.ReadFile(configPath())
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.WebPort == 0 {
		cfg.WebPort = DefaultWebPort
	}
	return cfg
}

// Save writes the config back to disk.
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ProjectDB returns the path for the project file store database.
func (c *Config) ProjectDB() string {
	if c.ProjectDBPath != "" {
		return c.ProjectDBPath
	}
	return filepath.Join(utils.AppDir(), "project.db")
}

// HistoryDB returns the path for the conversation history database.
func (c *Config) HistoryDB() string {
	if c.HistoryDBPath != "" {
		return c.HistoryDBPath
	}
	return filepath.Join(utils.AppDir(), "history.db")
}
