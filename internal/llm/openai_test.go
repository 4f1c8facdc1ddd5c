package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/docqa/internal/config"
	"github.com/spherical/docqa/internal/domain"
	"github.com/spherical/docqa/internal/observability"
)

func openAIServer(t *testing.T, failFirst int, content string, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(calls, 1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))

		if int(n) <= failFirst {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"over capacity","type":"server_error"}}`))
			return
		}

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama-3.1-8b-instant", body.Model)
		if assert.Len(t, body.Messages, 2) {
			assert.Equal(t, "system", body.Messages[0].Role)
			assert.Equal(t, "user", body.Messages[1].Role)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   body.Model,
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			}},
		})
	}))
}

func TestOpenAIClient_Complete(t *testing.T) {
	var calls int32
	srv := openAIServer(t, 1, "Revenue grew 12%.", &calls)
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{
		Provider: "groq", APIKey: "gsk-test", Model: "llama-3.1-8b-instant",
		BaseURL: srv.URL, Retry: fastRetry(),
	})
	assert.Equal(t, "groq/llama-3.1-8b-instant", c.Name())

	out, err := c.Complete(context.Background(), testPrompt)
	require.NoError(t, err)
	assert.Equal(t, "Revenue grew 12%.", out)
	assert.Equal(t, int32(2), calls, "503 is retried by the shared policy")
}

func TestOpenAIClient_Exhausted(t *testing.T) {
	var calls int32
	srv := openAIServer(t, 100, "never", &calls)
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{
		Provider: "groq", APIKey: "gsk-test", Model: "llama-3.1-8b-instant",
		BaseURL: srv.URL, Retry: fastRetry(),
	})
	_, err := c.Complete(context.Background(), testPrompt)
	assert.Equal(t, domain.KindModelUnavailable, domain.KindOf(err))
	assert.Equal(t, int32(4), calls)
}

func TestNew_Factory(t *testing.T) {
	var calls int32
	srv := openAIServer(t, 1, "answer", &calls)
	defer srv.Close()

	m := observability.NewMetrics(nil)
	cfg := config.DefaultConfig().LLM
	cfg.APIKey = "gsk-test"
	cfg.BaseURL = srv.URL
	cfg.Retry = config.RetryConfig{MaxRetries: 2, InitialBackoff: 1, MaxBackoff: 1}

	c, err := New(context.Background(), cfg, nil, m)
	require.NoError(t, err)
	assert.Equal(t, "groq/llama-3.1-8b-instant", c.Name())

	out, err := c.Complete(context.Background(), testPrompt)
	require.NoError(t, err)
	assert.Equal(t, "answer", out)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ModelRetriesTotal.WithLabelValues("groq")))

	cfg.Provider = "bard"
	_, err = New(context.Background(), cfg, nil, nil)
	assert.Error(t, err)
}

type closingCompleter struct {
	closed int
	err    error
}

func (c *closingCompleter) Name() string { return "closing/test" }

func (c *closingCompleter) Complete(ctx context.Context, p domain.Prompt) (string, error) {
	return "ok", nil
}

func (c *closingCompleter) Close() error {
	c.closed++
	return c.err
}

func TestInstrument_ForwardsClose(t *testing.T) {
	inner := &closingCompleter{}
	c := Instrument(inner, time.Second, nil)

	closer, ok := c.(io.Closer)
	require.True(t, ok)
	require.NoError(t, closer.Close())
	assert.Equal(t, 1, inner.closed)

	plain := Instrument(NewClient("key", "model"), 0, nil)
	assert.NoError(t, plain.(io.Closer).Close())
}

func TestNew_DefaultModelPerProvider(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{config.ProviderGroq, "groq/llama-3.1-8b-instant"},
		{config.ProviderOpenAI, "openai/gpt-4o-mini"},
		{config.ProviderOpenRouter, "openrouter/google/gemini-2.5-flash"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := config.DefaultConfig().LLM
			cfg.Provider = tt.provider
			cfg.Model = ""
			cfg.APIKey = "key"

			c, err := New(context.Background(), cfg, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Name())
		})
	}
}
