package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/mgpai22/subko/internal/translate"
)

// Translation controls how a track is batched and sent.
type Translation struct {
	BatchSize    int    `toml:"batch_size"`
	Concurrency  int    `toml:"concurrency"`
	Align        string `toml:"align"`
	Retries      int    `toml:"retries"`
	SystemPrompt string `toml:"system_prompt"`
	UserPrompt   string `toml:"user_prompt"`
}

// Cache configures the response cache.
type Cache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// APIKeys holds per-provider credentials. Environment variables win.
type APIKeys struct {
	OpenAI    string `toml:"openai"`
	Anthropic string `toml:"anthropic"`
	Gemini    string `toml:"gemini"`
}

// Config is the on-disk configuration for subko.
type Config struct {
	Provider              string      `toml:"provider"`
	Model                 string      `toml:"model"`
	BaseURL               string      `toml:"base_url"`
	RequestTimeoutSeconds int         `toml:"request_timeout_seconds"`
	FFmpegPath            string      `toml:"ffmpeg_path"`
	Translation           Translation `toml:"translation"`
	Cache                 Cache       `toml:"cache"`
	APIKeys               APIKeys     `toml:"api_keys"`
}

var envKeys = map[translate.Provider]string{
	translate.ProviderOpenAI:    "OPENAI_API_KEY",
	translate.ProviderAnthropic: "ANTHROPIC_API_KEY",
	translate.ProviderGemini:    "GEMINI_API_KEY",
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider: string(translate.ProviderOpenAI),
		Translation: Translation{
			BatchSize:   10,
			Concurrency: 1,
			Align:       "position",
		},
		Cache: Cache{
			Path: filepath.Join(cacheHome(), "subko", "responses.db"),
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/subko/config.toml.
func DefaultPath() string {
	return filepath.Join(configHome(), "subko", "config.toml")
}

// Load locates and parses a configuration file, then applies .env and
// environment overrides. A missing file yields defaults with exists=false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolvePath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, resolved, exists, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, resolved, exists, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if err := LoadDotEnv(".env"); err != nil {
		return nil, resolved, exists, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, resolved, exists, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, resolved, exists, err
	}
	return &cfg, resolved, exists, nil
}

// LoadDotEnv reads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// APIKey returns the credential for provider, preferring the environment.
func (c *Config) APIKey(provider translate.Provider) string {
	if name, ok := envKeys[provider]; ok {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	switch provider {
	case translate.ProviderOpenAI:
		return c.APIKeys.OpenAI
	case translate.ProviderAnthropic:
		return c.APIKeys.Anthropic
	case translate.ProviderGemini:
		return c.APIKeys.Gemini
	}
	return ""
}

// EnvKey names the environment variable read for provider.
func EnvKey(provider translate.Provider) string {
	return envKeys[provider]
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c *Config) normalize() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.Model = strings.TrimSpace(c.Model)
	c.Translation.Align = strings.ToLower(strings.TrimSpace(c.Translation.Align))

	if c.Cache.Path != "" {
		expanded, err := ExpandPath(c.Cache.Path)
		if err != nil {
			return err
		}
		c.Cache.Path = expanded
	}
	if c.FFmpegPath != "" {
		expanded, err := ExpandPath(c.FFmpegPath)
		if err != nil {
			return err
		}
		c.FFmpegPath = expanded
	}
	return nil
}

func resolvePath(path string) (string, bool, error) {
	if strings.TrimSpace(path) != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file not found: %s", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	def := DefaultPath()
	if _, err := os.Stat(def); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return def, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return def, true, nil
}

// ExpandPath resolves a leading ~ and returns an absolute, cleaned path.
func ExpandPath(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "~" || strings.HasPrefix(value, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, strings.TrimPrefix(value, "~"))
	}
	abs, err := filepath.Abs(filepath.Clean(value))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return abs, nil
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config")
}

func cacheHome() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".cache")
}
