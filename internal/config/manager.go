// Package config loads the server configuration from a JSON file with
// environment-variable overrides on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the server's persistent configuration.
type Config struct {
	LLMProvider    string `json:"llm_provider,omitempty"` // gemini, openai, anthropic
	Model          string `json:"model,omitempty"`        // model override for the provider
	DBPath         string `json:"db_path,omitempty"`      // sqlite database file
	ListenAddr     string `json:"listen_addr,omitempty"`  // host:port for the HTTP API
	DeployBaseURL  string `json:"deploy_base_url,omitempty"`
	DeployToken    string `json:"deploy_token,omitempty"`
	LogLevel       string `json:"log_level,omitempty"` // zerolog level name
	SandboxMode    string `json:"sandbox_mode,omitempty"`
	MaxSteps       int    `json:"max_steps,omitempty"`
	MaxCorrections int    `json:"max_corrections,omitempty"`
}

// Manager handles loading and saving the configuration.
type Manager struct {
	configDir string
}

// NewManager creates a configuration manager rooted at the user config dir.
func NewManager() (*Manager, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user config dir: %w", err)
	}
	return &Manager{configDir: filepath.Join(configDir, "nexo")}, nil
}

// GetConfigPath returns the absolute path to the config.json file.
func (m *Manager) GetConfigPath() string {
	return filepath.Join(m.configDir, "config.json")
}

// Load reads the configuration from disk, applies defaults and overlays
// environment variables. A missing file is not an error.
func (m *Manager) Load() (*Config, error) {
	cfg := Config{}

	path := m.GetConfigPath()
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config json: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	overlay(&c.LLMProvider, "LLM_PROVIDER")
	overlay(&c.DBPath, "NEXO_DB_PATH")
	overlay(&c.ListenAddr, "NEXO_LISTEN_ADDR")
	overlay(&c.DeployBaseURL, "NEXO_DEPLOY_BASE_URL")
	overlay(&c.DeployToken, "NEXO_DEPLOY_TOKEN")
	overlay(&c.LogLevel, "NEXO_LOG_LEVEL")
	overlay(&c.SandboxMode, "NEXO_SANDBOX_MODE")
}

func (c *Config) applyDefaults() {
	if c.LLMProvider == "" {
		c.LLMProvider = "gemini"
	}
	if c.DBPath == "" {
		c.DBPath = "nexo.db"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func overlay(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Save writes the configuration to disk with owner-only permissions.
func (m *Manager) Save(cfg *Config) error {
	if err := os.MkdirAll(m.configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.GetConfigPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Exists checks if the configuration file has been created.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.GetConfigPath())
	return !os.IsNotExist(err)
}
