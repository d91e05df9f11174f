// Package config loads the process configuration: YAML file first, then
// environment overrides (with .env support for local development).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/draftsmith/forgebridge/internal/envload"
)

// Environment override keys.
const (
	EnvListenAddr = "FORGE_BRIDGE_ADDR"
	EnvBridgeURL  = "FORGE_BRIDGE_URL"
	EnvToken      = "FORGE_BRIDGE_TOKEN"
	EnvModel      = "FORGE_MODEL"
)

// Duration is a yaml-parseable time.Duration ("30s", "2m").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"'`)
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// ModelConfig is one model alias definition.
type ModelConfig struct {
	Alias        string   `yaml:"alias"`
	Provider     string   `yaml:"provider"`
	API          string   `yaml:"api"`
	Model        string   `yaml:"model"`
	BaseURL      string   `yaml:"base_url"`
	Token        string   `yaml:"token"`
	TokenEnv     string   `yaml:"token_env"`
	MaxOutputTok int      `yaml:"max_output_tokens"`
	Timeout      Duration `yaml:"timeout"`
}

// AgentConfig controls the agent loop.
type AgentConfig struct {
	Model    string `yaml:"model"`
	MaxSteps int    `yaml:"max_steps"`
}

// Config is the full process configuration.
type Config struct {
	ListenAddr    string        `yaml:"listen_addr"`
	BridgeURL     string        `yaml:"bridge_url"`
	Token         string        `yaml:"token"`
	SubmitTimeout Duration      `yaml:"submit_timeout"`
	LogLevel      string        `yaml:"log_level"`
	TranscriptDB  string        `yaml:"transcript_db"`
	Agent         AgentConfig   `yaml:"agent"`
	Models        []ModelConfig `yaml:"models"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr:    "127.0.0.1:18080",
		BridgeURL:     "http://127.0.0.1:18080",
		SubmitTimeout: Duration(30 * time.Second),
		LogLevel:      "info",
		Agent: AgentConfig{
			Model:    "main",
			MaxSteps: 12,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (may
// be empty), then environment variables. The nearest .env is loaded first so
// its values participate in the override step.
func Load(path string) (*Config, error) {
	if _, err := envload.LoadNearest(); err != nil {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Default()
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()

	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = Duration(30 * time.Second)
	}
	if cfg.Agent.MaxSteps <= 0 {
		cfg.Agent.MaxSteps = 12
	}
	if strings.TrimSpace(cfg.Agent.Model) == "" {
		cfg.Agent.Model = "main"
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvListenAddr)); v != "" {
		c.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBridgeURL)); v != "" {
		c.BridgeURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvToken)); v != "" {
		c.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvModel)); v != "" {
		c.Agent.Model = v
	}
}

// ModelByAlias finds one alias definition, case-insensitively.
func (c *Config) ModelByAlias(alias string) (ModelConfig, bool) {
	alias = strings.ToLower(strings.TrimSpace(alias))
	for _, m := range c.Models {
		if strings.ToLower(strings.TrimSpace(m.Alias)) == alias {
			return m, true
		}
	}
	return ModelConfig{}, false
}
