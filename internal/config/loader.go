package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// LogConfig controls the global zerolog setup. Populated from the
// environment so log tuning never requires editing config.yaml.
type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	Format     string `envconfig:"LOG_FORMAT" default:"console"`
	Output     string `envconfig:"LOG_OUTPUT" default:"stdout"`
	FilePath   string `envconfig:"LOG_FILE_PATH" default:"logs/venue_assistant.log"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"rfc3339"`
}

// EnvConfig holds environment-only settings (secrets and log tuning).
type EnvConfig struct {
	Log      LogConfig `envconfig:""`
	APIKey   string    `envconfig:"MODEL_API_KEY"`
	RedisURL string    `envconfig:"REDIS_URL"`
}

// LoadEnv processes environment variables into EnvConfig.
func LoadEnv() (*EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %v", err)
	}
	return &cfg, nil
}

// ModelConfig selects and tunes the chat model provider.
type ModelConfig struct {
	Provider    string  `yaml:"provider"` // openai, ollama, ark, deepseek
	Name        string  `yaml:"name"`
	BaseURL     string  `yaml:"base_url"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// DedupConfig holds the tunables of the duplicate-suppression pipeline.
type DedupConfig struct {
	WindowSize          int     `yaml:"window_size"`
	SentenceWindow      int     `yaml:"sentence_window"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	ContentThreshold    float64 `yaml:"content_threshold"`
}

// ContextConfig holds context-store retention settings.
type ContextConfig struct {
	MaxIdleSeconds int `yaml:"max_idle_seconds"`
}

// RedisConfig holds Redis session-history settings.
type RedisConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

// AppConfig represents the structure of config.yaml.
type AppConfig struct {
	Model   ModelConfig   `yaml:"model"`
	Dedup   DedupConfig   `yaml:"dedup"`
	Context ContextConfig `yaml:"context"`
	Redis   RedisConfig   `yaml:"redis"`
}

// LoadConfig loads configuration from config.yaml, applying defaults
// for anything the file leaves unset.
func LoadConfig(filepath string) (*AppConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %v", err)
	}

	return cfg, nil
}

// DefaultConfig returns the built-in defaults used when config.yaml is
// absent or partial.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Model: ModelConfig{
			Provider:    "openai",
			Name:        "openai/gpt-4o-mini",
			BaseURL:     "https://openrouter.ai/api/v1",
			MaxTokens:   1500,
			Temperature: 0.7,
		},
		Dedup: DedupConfig{
			WindowSize:          5,
			SentenceWindow:      10,
			SimilarityThreshold: 0.95,
			ContentThreshold:    0.85,
		},
		Context: ContextConfig{
			MaxIdleSeconds: int((40 * time.Minute).Seconds()),
		},
		Redis: RedisConfig{
			TTLSeconds: 3600,
		},
	}
}
