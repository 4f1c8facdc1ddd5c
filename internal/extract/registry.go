// Package extract turns uploaded documents into plain text through a table
// of per-format strategies.
package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/spherical/docqa/internal/domain"
	"github.com/spherical/docqa/internal/observability"
)

// DefaultMaxUploadBytes is the default upload limit (10 MiB).
const DefaultMaxUploadBytes int64 = 10 * 1024 * 1024

// Registry maps each supported format to the strategy that extracts it.
// It is built once at startup and read-only afterwards.
type Registry struct {
	strategies map[domain.DocumentFormat]domain.Strategy
	maxBytes   int64
	logger     *observability.Logger
	metrics    *observability.Metrics
}

// Option configures a Registry.
type Option func(*Registry)

// WithMaxUploadBytes overrides the upload limit.
func WithMaxUploadBytes(n int64) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxBytes = n
		}
	}
}

// WithLogger sets the registry logger.
func WithLogger(l *observability.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics records extraction counts and latencies.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithStrategy registers or replaces the strategy for one format.
func WithStrategy(format domain.DocumentFormat, s domain.Strategy) Option {
	return func(r *Registry) { r.strategies[format] = s }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		strategies: make(map[domain.DocumentFormat]domain.Strategy),
		maxBytes:   DefaultMaxUploadBytes,
		logger:     observability.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithComponent("extract")
	return r
}

// NewDefaultRegistry creates a registry with every built-in strategy.
// Legacy formats are converted through conv; a nil conv leaves them to fail
// with ConverterUnavailable.
func NewDefaultRegistry(conv domain.Converter, opts ...Option) *Registry {
	docx := NewWordStrategy()
	xlsx := NewExcelStrategy()
	pptx := NewPowerPointStrategy()

	defaults := []Option{
		WithStrategy(domain.FormatPDF, NewPDFStrategy()),
		WithStrategy(domain.FormatWordModern, docx),
		WithStrategy(domain.FormatExcelModern, xlsx),
		WithStrategy(domain.FormatPowerPointModern, pptx),
		WithStrategy(domain.FormatPlainText, NewTextStrategy()),
		WithStrategy(domain.FormatWordLegacy, NewLegacyStrategy(conv, "doc", "docx", docx)),
		WithStrategy(domain.FormatExcelLegacy, NewLegacyStrategy(conv, "xls", "xlsx", xlsx)),
		WithStrategy(domain.FormatPowerPointLegacy, NewLegacyStrategy(conv, "ppt", "pptx", pptx)),
	}
	return NewRegistry(append(defaults, opts...)...)
}

// Register adds or replaces a strategy. It must not be called once the
// registry is serving requests.
func (r *Registry) Register(format domain.DocumentFormat, s domain.Strategy) {
	r.strategies[format] = s
}

// MaxUploadBytes returns the configured upload limit.
func (r *Registry) MaxUploadBytes() int64 {
	return r.maxBytes
}

// Supports reports whether a strategy is registered for format.
func (r *Registry) Supports(format domain.DocumentFormat) bool {
	_, ok := r.strategies[format]
	return ok
}

// Formats lists the registered formats in their canonical order.
func (r *Registry) Formats() []domain.FormatInfo {
	out := make([]domain.FormatInfo, 0, len(r.strategies))
	for _, info := range domain.SupportedFormats {
		if r.Supports(info.Format) {
			out = append(out, info)
		}
	}
	return out
}

// Extract runs the strategy for upload.Format and returns the raw text.
// The text is not yet validated.
func (r *Registry) Extract(ctx context.Context, upload domain.RawUpload) (string, error) {
	log := r.logger.WithContext(ctx)

	if size := upload.Size(); size > r.maxBytes {
		r.record(upload.Format, domain.KindPayloadTooLarge, 0)
		return "", domain.PayloadTooLargeError(size, r.maxBytes)
	}

	strategy, ok := r.strategies[upload.Format]
	if !ok {
		r.record(upload.Format, domain.KindUnsupportedFormat, 0)
		what := string(upload.Format)
		if what == "" {
			what = upload.Filename
		}
		return "", domain.UnsupportedFormatError(fmt.Sprintf("unsupported document format %q", what))
	}

	start := time.Now()
	log.Debug().
		Str("format", string(upload.Format)).
		Str("filename", upload.Filename).
		Int("bytes", len(upload.Data)).
		Msg("extraction started")

	text, err := strategy.Extract(ctx, upload.Data)
	elapsed := time.Since(start)
	if err != nil {
		if _, ok := domain.AsDomainError(err); !ok {
			err = domain.ExtractionError(fmt.Sprintf("cannot extract %s", upload.Format.Description()), err)
		}
		kind := domain.KindOf(err)
		r.record(upload.Format, kind, elapsed)
		log.Warn().
			Str("format", string(upload.Format)).
			Str("kind", string(kind)).
			Dur("elapsed", elapsed).
			Err(err).
			Msg("extraction failed")
		return "", err
	}

	r.record(upload.Format, "", elapsed)
	log.Debug().
		Str("format", string(upload.Format)).
		Int("chars", len([]rune(text))).
		Dur("elapsed", elapsed).
		Str("preview", observability.Preview(text, 200)).
		Msg("extraction finished")
	return text, nil
}

func (r *Registry) record(format domain.DocumentFormat, kind domain.ErrorKind, elapsed time.Duration) {
	if r.metrics == nil {
		return
	}
	result := "ok"
	if kind != "" {
		result = string(kind)
	}
	label := string(format)
	if !r.Supports(format) {
		label = "unknown"
	}
	r.metrics.ExtractionsTotal.WithLabelValues(label, result).Inc()
	if elapsed > 0 {
		r.metrics.ExtractionDuration.WithLabelValues(label).Observe(elapsed.Seconds())
	}
}
