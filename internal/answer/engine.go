// Package answer drives a grounded language model call over one document.
package answer

import (
	"context"
	"strings"
	"time"

	"github.com/spherical/docqa/internal/domain"
	"github.com/spherical/docqa/internal/observability"
)

const (
	DefaultMaxPromptChars  = 100000
	DefaultRawPreviewChars = 8000
)

// Engine answers questions from document text with an injected model.
type Engine struct {
	llm        domain.Completer
	maxPrompt  int
	rawPreview int
	logger     *observability.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxPromptChars sets the prompt budget in characters.
func WithMaxPromptChars(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxPrompt = n
		}
	}
}

// WithRawPreviewChars sets how much text a raw-content request returns.
func WithRawPreviewChars(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.rawPreview = n
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *observability.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an Engine over llm.
func NewEngine(llm domain.Completer, opts ...Option) *Engine {
	e := &Engine{
		llm:        llm,
		maxPrompt:  DefaultMaxPromptChars,
		rawPreview: DefaultRawPreviewChars,
		logger:     observability.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithComponent("answer")
	return e
}

// Answer returns the model's answer to question, grounded on doc.Text.
func (e *Engine) Answer(ctx context.Context, question string, doc domain.ExtractedDocument) (string, error) {
	log := e.logger.WithContext(ctx)

	if strings.TrimSpace(question) == "" {
		return "", domain.InvalidQuestionError("question is empty")
	}

	if IsRawContentRequest(question) {
		log.Debug().Msg("Returning raw document content")
		return headRunes(doc.Text, e.rawPreview), nil
	}

	prompt := BuildPrompt(question, doc)
	if n := prompt.Len(); n > e.maxPrompt {
		return "", domain.ContextTooLargeError(n, e.maxPrompt)
	}

	if e.llm == nil {
		return "", domain.ModelUnavailableError("no language model configured", nil)
	}

	start := time.Now()
	log.Debug().
		Str("model", e.llm.Name()).
		Int("prompt_chars", prompt.Len()).
		Msg("Calling language model")

	out, err := e.llm.Complete(ctx, prompt)
	if err != nil {
		if _, ok := domain.AsDomainError(err); !ok {
			err = domain.ModelUnavailableError("model call failed", err)
		}
		log.Warn().
			Str("model", e.llm.Name()).
			Str("kind", string(domain.KindOf(err))).
			Dur("elapsed", time.Since(start)).
			Err(err).
			Msg("Language model call failed")
		return "", err
	}

	answer := strings.TrimSpace(out)
	if answer == "" {
		return "", domain.ModelResponseInvalidError("model returned an empty answer", nil)
	}

	log.Debug().
		Int("answer_chars", len([]rune(answer))).
		Dur("elapsed", time.Since(start)).
		Msg("Language model answered")
	return answer, nil
}

func headRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
