// Package config loads callmesh settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/hupe1980/callmesh/logging"
)

// Provider selects the completion backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderMock      Provider = "mock"
)

// Config holds all process settings.
type Config struct {
	Port string

	Provider Provider

	// OpenAI compatible endpoint (Hugging Face router by default).
	HFAPIKey string
	HFModel  string
	HFAPIURL string

	AnthropicAPIKey string
	AnthropicModel  string

	MaxTokens   int64
	Temperature float64

	// MaxHistoryMessages bounds the context sent per turn; 0 disables.
	MaxHistoryMessages int

	Voice          string
	SpeechLanguage string

	LogLevel  logging.LogLevel
	LogFormat string
}

// Addr returns the listen address for Port.
func (c Config) Addr() string { return ":" + c.Port }

// Model returns the model id for the selected provider.
func (c Config) Model() string {
	switch c.Provider {
	case ProviderAnthropic:
		return c.AnthropicModel
	case ProviderMock:
		return "mock"
	default:
		return c.HFModel
	}
}

// Load reads path (if present) into the environment without overriding
// existing variables, then builds the Config from the environment.
func Load(path string) (Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %q: %w", path, err)
		}
	}
	return LoadFromEnv()
}

// LoadFromEnv builds the Config from environment variables only.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		Port:            envOr("PORT", "3000"),
		Provider:        Provider(strings.ToLower(envOr("COMPLETION_PROVIDER", string(ProviderOpenAI)))),
		HFAPIKey:        os.Getenv("HF_API_KEY"),
		HFModel:         envOr("HF_MODEL", "Qwen/Qwen2.5-VL-7B-Instruct"),
		HFAPIURL:        envOr("HF_API_URL", "https://router.huggingface.co/v1"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		Voice:           envOr("VOICE", "Polly.Joanna-Neural"),
		SpeechLanguage:  envOr("SPEECH_LANGUAGE", "en-US"),
		LogFormat:       strings.ToLower(envOr("LOG_FORMAT", "text")),
	}

	var err error
	if cfg.MaxTokens, err = envInt64Or("MAX_TOKENS", 150); err != nil {
		return Config{}, err
	}
	if cfg.Temperature, err = envFloat64Or("TEMPERATURE", 0.7); err != nil {
		return Config{}, err
	}
	maxHistory, err := envInt64Or("MAX_HISTORY_MESSAGES", 20)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxHistoryMessages = int(maxHistory)
	if cfg.LogLevel, err = logging.ParseLevel(os.Getenv("LOG_LEVEL")); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if _, err := strconv.ParseUint(c.Port, 10, 16); err != nil || c.Port == "0" {
		return fmt.Errorf("PORT must be a valid TCP port, got %q", c.Port)
	}
	switch c.Provider {
	case ProviderOpenAI:
		if strings.TrimSpace(c.HFAPIKey) == "" {
			return fmt.Errorf("HF_API_KEY is required when COMPLETION_PROVIDER=openai")
		}
		if strings.TrimSpace(c.HFAPIURL) == "" {
			return fmt.Errorf("HF_API_URL must not be empty")
		}
	case ProviderAnthropic:
		if strings.TrimSpace(c.AnthropicAPIKey) == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when COMPLETION_PROVIDER=anthropic")
		}
	case ProviderMock:
	default:
		return fmt.Errorf("COMPLETION_PROVIDER must be one of openai|anthropic|mock, got %q", c.Provider)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("MAX_TOKENS must be > 0")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("TEMPERATURE must be within [0, 2]")
	}
	if c.MaxHistoryMessages < 0 {
		return fmt.Errorf("MAX_HISTORY_MESSAGES must be >= 0")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json")
	}
	return nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt64Or(key string, def int64) (int64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func envFloat64Or(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}
