package domain

import "context"

// Strategy extracts plain text from the bytes of one document format.
// Implementations must be pure functions of data.
type Strategy interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc func(ctx context.Context, data []byte) (string, error)

// Extract calls f(ctx, data).
func (f StrategyFunc) Extract(ctx context.Context, data []byte) (string, error) {
	return f(ctx, data)
}

// Converter turns a legacy binary office file into its modern equivalent
// (for example doc into docx) using an external tool.
type Converter interface {
	// Convert returns the converted bytes. targetExt is the extension of the
	// wanted output without the dot, e.g. "docx".
	Convert(ctx context.Context, data []byte, sourceExt, targetExt string) ([]byte, error)

	// Available reports whether the external tool can be used.
	Available() error
}

// Completer is a language model capability.
type Completer interface {
	// Complete sends the prompt and returns the model's text response.
	Complete(ctx context.Context, prompt Prompt) (string, error)

	// Name identifies the provider and model for logs and metrics.
	Name() string
}
