// Package config provides unified configuration loading for docqa.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported language model providers.
const (
	ProviderGroq       = "groq"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderVertex     = "vertex"
)

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderGroq:
		return "llama-3.1-8b-instant"
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderOpenRouter:
		return "google/gemini-2.5-flash"
	case ProviderVertex:
		return "gemini-2.0-flash"
	default:
		return ""
	}
}

// Config holds all configuration for docqa.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Ingestion     IngestionConfig     `yaml:"ingestion"`
	Answering     AnsweringConfig     `yaml:"answering"`
	LLM           LLMConfig           `yaml:"llm"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	AllowedOrigins   []string      `yaml:"allowed_origins"`
}

// IngestionConfig holds extraction and validation limits.
type IngestionConfig struct {
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	MinContentChars int           `yaml:"min_content_chars"`
	PreviewChars    int           `yaml:"preview_chars"`
	SofficePath     string        `yaml:"soffice_path"`
	ConvertTimeout  time.Duration `yaml:"convert_timeout"`
}

// AnsweringConfig holds prompt budget settings.
type AnsweringConfig struct {
	MaxPromptChars  int `yaml:"max_prompt_chars"`
	RawPreviewChars int `yaml:"raw_preview_chars"`
}

// LLMConfig holds language model provider settings.
type LLMConfig struct {
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	Retry    RetryConfig   `yaml:"retry"`
	Vertex   VertexConfig  `yaml:"vertex"`
}

// RetryConfig mirrors llm.RetryConfig for YAML loading.
type RetryConfig struct {
	MaxRetries     int           `yaml:"max_retries"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

// VertexConfig holds Vertex AI settings.
type VertexConfig struct {
	Project string `yaml:"project"`
	Region  string `yaml:"region"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	ServiceName string `yaml:"service_name"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	// The default model follows the provider finally selected.
	cfg.LLM.Model = ""

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultModel(cfg.LLM.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8000,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     120 * time.Second,
			IdleTimeout:      120 * time.Second,
			RequestTimeout:   110 * time.Second,
			GracefulShutdown: 10 * time.Second,
			AllowedOrigins:   []string{"http://localhost:3000"},
		},
		Ingestion: IngestionConfig{
			MaxUploadBytes:  10 * 1024 * 1024,
			MinContentChars: 20,
			PreviewChars:    500,
			ConvertTimeout:  60 * time.Second,
		},
		Answering: AnsweringConfig{
			MaxPromptChars:  100000,
			RawPreviewChars: 8000,
		},
		LLM: LLMConfig{
			Provider: ProviderGroq,
			Model:    DefaultModel(ProviderGroq),
			Timeout:  60 * time.Second,
			Retry: RetryConfig{
				MaxRetries:     3,
				InitialBackoff: 1 * time.Second,
				MaxBackoff:     30 * time.Second,
			},
			Vertex: VertexConfig{
				Region: "us-central1",
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogFormat:   "json",
			ServiceName: "docqa",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Ingestion.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}

	if c.Ingestion.MinContentChars < 1 {
		return fmt.Errorf("min_content_chars must be at least 1")
	}

	if c.Answering.MaxPromptChars <= 0 {
		return fmt.Errorf("max_prompt_chars must be positive")
	}

	if c.Answering.RawPreviewChars <= 0 {
		return fmt.Errorf("raw_preview_chars must be positive")
	}

	if c.LLM.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry max_retries must not be negative")
	}

	switch c.LLM.Provider {
	case ProviderGroq, ProviderOpenAI, ProviderOpenRouter, ProviderVertex:
	default:
		return fmt.Errorf("invalid llm provider: %s", c.LLM.Provider)
	}

	switch c.Observability.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s", c.Observability.LogFormat)
	}

	return nil
}

// Validate checks that the selected provider has credentials. It is kept
// out of Config.Validate so commands that never call a model can run
// without an API key.
func (c LLMConfig) Validate() error {
	switch c.Provider {
	case ProviderGroq, ProviderOpenAI, ProviderOpenRouter:
		if c.APIKey == "" {
			return fmt.Errorf("llm api_key is required for provider %s", c.Provider)
		}
	case ProviderVertex:
		if c.Vertex.Project == "" {
			return fmt.Errorf("llm vertex project is required for provider vertex")
		}
	default:
		return fmt.Errorf("invalid llm provider: %s", c.Provider)
	}
	return nil
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}

	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Ingestion.MaxUploadBytes = n
		}
	}

	if v := os.Getenv("MIN_CONTENT_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Ingestion.MinContentChars = n
		}
	}

	if v := os.Getenv("SOFFICE_PATH"); v != "" {
		cfg.Ingestion.SofficePath = v
	}

	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = strings.ToLower(v)
	}

	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}

	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}

	// Provider specific keys only fill an empty api_key.
	if cfg.LLM.APIKey == "" {
		var key string
		switch cfg.LLM.Provider {
		case ProviderGroq:
			key = os.Getenv("GROQ_API_KEY")
		case ProviderOpenAI:
			key = os.Getenv("OPENAI_API_KEY")
		case ProviderOpenRouter:
			key = os.Getenv("OPENROUTER_API_KEY")
		}
		cfg.LLM.APIKey = key
	}

	if v := os.Getenv("VERTEX_PROJECT"); v != "" {
		cfg.LLM.Vertex.Project = v
	}

	if v := os.Getenv("VERTEX_REGION"); v != "" {
		cfg.LLM.Vertex.Region = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}
