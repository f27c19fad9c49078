// Package config loads gpt-md-translator settings from a TOML file
// (Settings.toml by default) and GPTMDT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// DefaultPath is the settings file read when no --config is given.
const DefaultPath = "Settings.toml"

// EnvPrefix prefixes every environment override, e.g. GPTMDT_GPTMODEL.
const EnvPrefix = "GPTMDT_"

// ErrNoModel is returned by Validate when no model is configured.
var ErrNoModel = errors.New("config: gptmodel is not set")

// Settings holds every configurable value. Keys match the settings file.
type Settings struct {
	GPTModel   string   `toml:"gptmodel" env:"GPTMODEL"`
	SysPrompt  string   `toml:"sysprompt,omitempty" env:"SYSPROMPT"`
	IgnoreList []string `toml:"ignorelist,omitempty" env:"IGNORELIST" envSeparator:","`

	Provider       string `toml:"provider" env:"PROVIDER"`
	OpenAIToken    string `toml:"openaitoken,omitempty" env:"OPENAITOKEN"`
	AnthropicToken string `toml:"anthropictoken,omitempty" env:"ANTHROPICTOKEN"`
	GeminiToken    string `toml:"geminitoken,omitempty" env:"GEMINITOKEN"`
	OpenAIBaseURL  string `toml:"openaibaseurl,omitempty" env:"OPENAIBASEURL"`
	OllamaHost     string `toml:"ollamahost,omitempty" env:"OLLAMAHOST"`

	RequestLimit int `toml:"requestlimit" env:"REQUESTLIMIT"`
	Retries      int `toml:"retries" env:"RETRIES"`

	LogLevel string `toml:"loglevel" env:"LOGLEVEL"`
	LogJSON  bool   `toml:"logjson,omitempty" env:"LOGJSON"`

	// HistoryDB is the SQLite file for run history and the translation
	// cache. Empty means DefaultHistoryPath.
	HistoryDB string `toml:"historydb,omitempty" env:"HISTORYDB"`
	Cache     bool   `toml:"cache" env:"CACHE"`
}

// Default returns sensible defaults. GPTModel has none: it must be set.
func Default() Settings {
	return Settings{
		Provider:     "openai",
		RequestLimit: 4096,
		Retries:      2,
		LogLevel:     "info",
		Cache:        true,
	}
}

// Load reads the settings file at path, if it exists, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Settings, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return cfg, fmt.Errorf("config: load %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("config: stat %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("config: environment: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is
// ignored.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// Validate checks the settings needed before any request can be made.
func (s Settings) Validate() error {
	if s.GPTModel == "" {
		return ErrNoModel
	}
	if s.RequestLimit <= 0 {
		return fmt.Errorf("config: requestlimit must be positive, got %d", s.RequestLimit)
	}
	return nil
}

// APIKey returns the configured key for provider.
func (s Settings) APIKey(provider string) string {
	switch provider {
	case "openai", "":
		return s.OpenAIToken
	case "claude":
		return s.AnthropicToken
	case "gemini":
		return s.GeminiToken
	default:
		return ""
	}
}

// BaseURL returns the endpoint override for provider, if any.
func (s Settings) BaseURL(provider string) string {
	switch provider {
	case "openai", "":
		return s.OpenAIBaseURL
	case "ollama":
		return s.OllamaHost
	default:
		return ""
	}
}

// HistoryPath returns the history database location.
func (s Settings) HistoryPath() (string, error) {
	if s.HistoryDB != "" {
		return s.HistoryDB, nil
	}
	return DefaultHistoryPath()
}

// DefaultHistoryPath returns ~/.config/gpt-md-translator/history.db.
func DefaultHistoryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gpt-md-translator", "history.db"), nil
}

// Save writes cfg to path as TOML.
func Save(path string, cfg Settings) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: mkdir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
