package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Endpoint       string `toml:"endpoint"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type SearchConfig struct {
	Endpoint   string `toml:"endpoint"`
	APIKey     string `toml:"api_key"`
	Index      string `toml:"index"`
	APIVersion string `toml:"api_version"`
}

type SessionConfig struct {
	TTLMinutes           int `toml:"ttl_minutes"`
	SweepIntervalMinutes int `toml:"sweep_interval_minutes"`
}

type ContextConfig struct {
	MaxTurns  int    `toml:"max_turns"`
	MaxTokens int    `toml:"max_tokens"`
	Model     string `toml:"model"`
	Enforce   bool   `toml:"enforce"`
}

type WorkerConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

type Config struct {
	Bind    string        `toml:"bind"`
	LLM     LLMConfig     `toml:"llm"`
	Search  SearchConfig  `toml:"search"`
	Session SessionConfig `toml:"session"`
	Context ContextConfig `toml:"context"`
	Worker  WorkerConfig  `toml:"worker"`
}

func Default() Config {
	return Config{
		Bind: ":8080",
		LLM: LLMConfig{
			Endpoint:       "http://127.0.0.1:8080",
			Model:          "gpt-4o",
			TimeoutSeconds: 300,
		},
		Search: SearchConfig{
			Index:      "cosmetic-raw-materials",
			APIVersion: "2024-07-01",
		},
		Session: SessionConfig{
			TTLMinutes:           30,
			SweepIntervalMinutes: 5,
		},
		Context: ContextConfig{
			MaxTurns:  5,
			MaxTokens: 4000,
			Model:     "gpt-4o",
			Enforce:   false,
		},
		Worker: WorkerConfig{
			TimeoutSeconds: 30,
		},
	}
}

// LoadOrCreate reads the config at path, writing the defaults there first if
// no file exists yet.
func LoadOrCreate(path string) (Config, error) {
	config := Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return config, err
			}

			configData, err := toml.Marshal(config)
			if err != nil {
				return config, err
			}

			if err := os.WriteFile(path, configData, 0o644); err != nil {
				return config, err
			}

			return config, nil
		}

		return config, err
	}

	configData, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	if err := toml.Unmarshal(configData, &config); err != nil {
		return config, err
	}

	config.Bind = strings.TrimSpace(config.Bind)
	config.LLM.Endpoint = strings.TrimSpace(config.LLM.Endpoint)
	config.Search.Endpoint = strings.TrimSpace(config.Search.Endpoint)

	if config.Bind == "" {
		config.Bind = ":8080"
	}

	return config, nil
}

// Validate reports missing required settings. Failures here are fatal at
// startup, not recoverable at request time.
func (c Config) Validate() error {
	if c.LLM.Endpoint == "" {
		return errors.New("llm.endpoint is required")
	}

	if c.Search.Endpoint == "" {
		return errors.New("search.endpoint is required (set search.endpoint and search.api_key)")
	}

	if c.Search.APIKey == "" {
		return errors.New("search.api_key is required")
	}

	if c.Session.TTLMinutes <= 0 {
		return errors.New("session.ttl_minutes must be positive")
	}

	if c.Context.MaxTurns <= 0 || c.Context.MaxTokens <= 0 {
		return errors.New("context.max_turns and context.max_tokens must be positive")
	}

	return nil
}
