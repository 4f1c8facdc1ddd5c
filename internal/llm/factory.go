package llm

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spherical/docqa/internal/config"
	"github.com/spherical/docqa/internal/domain"
	"github.com/spherical/docqa/internal/observability"
)

// New builds the completer selected by cfg.Provider, instrumented with
// metrics when m is non-nil.
func New(ctx context.Context, cfg config.LLMConfig, logger *observability.Logger, m *observability.Metrics) (domain.Completer, error) {
	if logger == nil {
		logger = observability.Nop()
	}
	logger = logger.WithComponent("llm")
	if cfg.Model == "" {
		cfg.Model = config.DefaultModel(cfg.Provider)
	}

	retry := RetryConfig{
		MaxRetries:     cfg.Retry.MaxRetries,
		InitialBackoff: cfg.Retry.InitialBackoff,
		MaxBackoff:     cfg.Retry.MaxBackoff,
	}
	if m != nil {
		provider := cfg.Provider
		retry.OnRetry = func(int, error) {
			m.ModelRetriesTotal.WithLabelValues(provider).Inc()
		}
	}

	var (
		c   domain.Completer
		err error
	)
	switch cfg.Provider {
	case config.ProviderGroq:
		base := cfg.BaseURL
		if base == "" {
			base = GroqBaseURL
		}
		c = NewOpenAIClient(OpenAIConfig{
			Provider: config.ProviderGroq, APIKey: cfg.APIKey, Model: cfg.Model,
			BaseURL: base, Retry: retry, Logger: logger,
		})
	case config.ProviderOpenAI:
		c = NewOpenAIClient(OpenAIConfig{
			Provider: config.ProviderOpenAI, APIKey: cfg.APIKey, Model: cfg.Model,
			BaseURL: cfg.BaseURL, Retry: retry, Logger: logger,
		})
	case config.ProviderOpenRouter:
		c = NewClient(cfg.APIKey, cfg.Model, WithURL(cfg.BaseURL), WithRetryConfig(retry), WithLogger(logger))
	case config.ProviderVertex:
		c, err = NewVertexClient(ctx, cfg.Vertex.Project, cfg.Vertex.Region, cfg.Model, retry, logger)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}

	if cfg.Timeout > 0 || m != nil {
		c = Instrument(c, cfg.Timeout, m)
	}

	logger.Info().Str("provider", c.Name()).Msg("Language model configured")
	return c, nil
}

// Instrument wraps c with a per-call timeout and call metrics.
func Instrument(c domain.Completer, timeout time.Duration, m *observability.Metrics) domain.Completer {
	return &instrumented{next: c, timeout: timeout, metrics: m}
}

type instrumented struct {
	next    domain.Completer
	timeout time.Duration
	metrics *observability.Metrics
}

func (i *instrumented) Name() string { return i.next.Name() }

// Close releases the wrapped client when it holds resources.
func (i *instrumented) Close() error {
	if c, ok := i.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (i *instrumented) Complete(ctx context.Context, prompt domain.Prompt) (string, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := i.next.Complete(ctx, prompt)
	if i.metrics != nil {
		result := "ok"
		if err != nil {
			result = string(domain.KindOf(err))
			if result == "" {
				result = "error"
			}
		}
		i.metrics.ModelCallDuration.WithLabelValues(i.next.Name(), result).Observe(time.Since(start).Seconds())
	}
	return out, err
}
