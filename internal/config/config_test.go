package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SERVER_PORT", "SERVER_HOST", "ALLOWED_ORIGINS", "MAX_UPLOAD_BYTES",
		"MIN_CONTENT_CHARS", "SOFFICE_PATH", "LLM_PROVIDER", "LLM_MODEL",
		"LLM_BASE_URL", "GROQ_API_KEY", "OPENAI_API_KEY", "OPENROUTER_API_KEY",
		"VERTEX_PROJECT", "VERTEX_REGION", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, int64(10485760), cfg.Ingestion.MaxUploadBytes)
	assert.Equal(t, 20, cfg.Ingestion.MinContentChars)
	assert.Equal(t, 100000, cfg.Answering.MaxPromptChars)
	assert.Equal(t, 8000, cfg.Answering.RawPreviewChars)
	assert.Equal(t, ProviderGroq, cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.LLM.Retry.MaxRetries)
	assert.Equal(t, time.Second, cfg.LLM.Retry.InitialBackoff)
	assert.Equal(t, 30*time.Second, cfg.LLM.Retry.MaxBackoff)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)

	assert.NoError(t, cfg.Validate())
	// Defaults alone lack an API key.
	assert.Error(t, cfg.LLM.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MAX_UPLOAD_BYTES", "2048")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gsk-test", cfg.LLM.APIKey)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, int64(2048), cfg.Ingestion.MaxUploadBytes)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "console", cfg.Observability.LogFormat)
	assert.Equal(t, "0.0.0.0:9090", cfg.Address())
}

func TestLoad_ProviderKeySelection(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "OpenRouter")
	t.Setenv("GROQ_API_KEY", "wrong")
	t.Setenv("OPENROUTER_API_KEY", "sk-or")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenRouter, cfg.LLM.Provider)
	assert.Equal(t, "sk-or", cfg.LLM.APIKey)
	assert.Equal(t, "google/gemini-2.5-flash", cfg.LLM.Model)
}

func TestLoad_ModelFollowsProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		model    string
		want     string
	}{
		{"groq default", "", "", "llama-3.1-8b-instant"},
		{"openai default", "openai", "", "gpt-4o-mini"},
		{"openrouter default", "openrouter", "", "google/gemini-2.5-flash"},
		{"vertex default", "vertex", "", "gemini-2.0-flash"},
		{"explicit model wins", "openai", "gpt-4.1", "gpt-4.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("LLM_PROVIDER", tt.provider)
			t.Setenv("LLM_MODEL", tt.model)

			cfg, err := Load("")
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.LLM.Model)
		})
	}
}

func TestLoad_YAMLProviderWithoutModel(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "docqa.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  provider: openai\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "docqa.yaml")
	content := `
server:
  port: 8081
ingestion:
  min_content_chars: 5
llm:
  provider: vertex
  model: gemini-1.5-flash
  vertex:
    project: my-project
  retry:
    max_retries: 1
    initial_backoff: 10ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Ingestion.MinContentChars)
	assert.Equal(t, ProviderVertex, cfg.LLM.Provider)
	assert.Equal(t, "my-project", cfg.LLM.Vertex.Project)
	assert.Equal(t, "us-central1", cfg.LLM.Vertex.Region)
	assert.Equal(t, 1, cfg.LLM.Retry.MaxRetries)
	assert.Equal(t, 10*time.Millisecond, cfg.LLM.Retry.InitialBackoff)
	assert.Equal(t, 30*time.Second, cfg.LLM.Retry.MaxBackoff)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, false},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "bard" }, false},
		{"non-positive upload limit", func(c *Config) { c.Ingestion.MaxUploadBytes = 0 }, false},
		{"zero min content", func(c *Config) { c.Ingestion.MinContentChars = 0 }, false},
		{"zero prompt budget", func(c *Config) { c.Answering.MaxPromptChars = 0 }, false},
		{"negative retries", func(c *Config) { c.LLM.Retry.MaxRetries = -1 }, false},
		{"missing api key", func(c *Config) { c.LLM.APIKey = "" }, true},
		{"bad log format", func(c *Config) { c.Observability.LogFormat = "xml" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.LLM.APIKey = "key"
			tt.mutate(cfg)
			if tt.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestLLMConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*LLMConfig)
		ok     bool
	}{
		{"groq with key", func(c *LLMConfig) {}, true},
		{"groq without key", func(c *LLMConfig) { c.APIKey = "" }, false},
		{"openrouter without key", func(c *LLMConfig) { c.Provider = ProviderOpenRouter; c.APIKey = "" }, false},
		{"vertex without project", func(c *LLMConfig) { c.Provider = ProviderVertex }, false},
		{"vertex with project", func(c *LLMConfig) {
			c.Provider = ProviderVertex
			c.APIKey = ""
			c.Vertex.Project = "p"
		}, true},
		{"unknown provider", func(c *LLMConfig) { c.Provider = "bard" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig().LLM
			cfg.APIKey = "key"
			tt.mutate(&cfg)
			if tt.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestLoad_ExampleFileMatchesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join("..", "..", "configs", "docqa.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
