// Package app assembles the document QA components from configuration. Both
// the API server and the CLI build on it.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spherical/docqa/internal/answer"
	"github.com/spherical/docqa/internal/config"
	"github.com/spherical/docqa/internal/domain"
	"github.com/spherical/docqa/internal/extract"
	"github.com/spherical/docqa/internal/health"
	"github.com/spherical/docqa/internal/llm"
	"github.com/spherical/docqa/internal/observability"
	"github.com/spherical/docqa/internal/validate"
	"github.com/spherical/docqa/internal/workflow"
)

// App holds the wired components.
type App struct {
	Config    *config.Config
	Logger    *observability.Logger
	Metrics   *observability.Metrics
	Converter *extract.SofficeConverter
	Registry  *extract.Registry
	Validator *validate.Validator
	Completer domain.Completer
	Engine    *answer.Engine
	Graph     *workflow.Graph
	Health    *health.Checker
}

// Options controls optional parts of Build.
type Options struct {
	// SkipModel leaves Completer nil; answering then fails with
	// ModelUnavailable.
	SkipModel bool
	// Completer replaces the provider selected by the config.
	Completer domain.Completer
}

// Build wires every component from cfg.
func Build(ctx context.Context, cfg *config.Config, logger *observability.Logger, m *observability.Metrics, opts Options) (*App, error) {
	if logger == nil {
		logger = observability.Nop()
	}
	if m == nil {
		m = observability.NewMetrics(nil)
	}

	a := &App{Config: cfg, Logger: logger, Metrics: m}

	a.Converter = extract.NewSofficeConverter(cfg.Ingestion.SofficePath, cfg.Ingestion.ConvertTimeout, logger)
	a.Registry = extract.NewDefaultRegistry(a.Converter,
		extract.WithMaxUploadBytes(cfg.Ingestion.MaxUploadBytes),
		extract.WithLogger(logger),
		extract.WithMetrics(m),
	)
	a.Validator = validate.New(cfg.Ingestion.MinContentChars)

	switch {
	case opts.Completer != nil:
		a.Completer = opts.Completer
	case !opts.SkipModel:
		if err := cfg.LLM.Validate(); err != nil {
			return nil, err
		}
		c, err := llm.New(ctx, cfg.LLM, logger, m)
		if err != nil {
			return nil, fmt.Errorf("create llm client: %w", err)
		}
		a.Completer = c
	}

	a.Engine = answer.NewEngine(a.Completer,
		answer.WithMaxPromptChars(cfg.Answering.MaxPromptChars),
		answer.WithRawPreviewChars(cfg.Answering.RawPreviewChars),
		answer.WithLogger(logger),
	)
	a.Graph = workflow.NewGraph(a.Registry, a.Validator, a.Engine,
		workflow.WithLogger(logger),
		workflow.WithMetrics(m),
	)

	a.Health = health.NewChecker(logger)
	a.Health.Register("converter", ConverterCheck(a.Converter))
	a.Health.Register("llm", ModelCheck(a.Completer))

	return a, nil
}

// Close releases the language model client. It is safe to call when no
// model is configured.
func (a *App) Close() error {
	if c, ok := a.Completer.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close llm client: %w", err)
		}
	}
	return nil
}

// ConverterCheck reports degraded when legacy conversion is unavailable;
// modern formats still work without it.
func ConverterCheck(conv domain.Converter) health.Check {
	return func(ctx context.Context) health.ComponentHealth {
		start := time.Now()
		if err := conv.Available(); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp, Latency: time.Since(start).String()}
	}
}

// ModelCheck reports whether a language model is configured. It makes no
// network call.
func ModelCheck(c domain.Completer) health.Check {
	return func(ctx context.Context) health.ComponentHealth {
		if c == nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: "no language model configured"}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: c.Name()}
	}
}
