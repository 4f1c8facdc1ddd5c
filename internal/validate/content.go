// Package validate gates extracted text before it may be answered on.
package validate

import (
	"strings"
	"unicode/utf8"

	"github.com/spherical/docqa/internal/domain"
)

// DefaultMinContentChars is the minimum trimmed length of usable text.
const DefaultMinContentChars = 20

// Validator checks extracted text for emptiness, length and encoding.
// It never rewrites the text it accepts.
type Validator struct {
	minChars int
}

// New creates a Validator. minChars below 1 falls back to the default.
func New(minChars int) *Validator {
	if minChars < 1 {
		minChars = DefaultMinContentChars
	}
	return &Validator{minChars: minChars}
}

// MinChars returns the configured minimum.
func (v *Validator) MinChars() int {
	return v.minChars
}

// Validate returns text unchanged when it is usable, or a typed failure.
func (v *Validator) Validate(text string) (string, error) {
	if !utf8.ValidString(text) {
		return "", domain.ExtractionError("extracted text is not valid UTF-8", nil)
	}
	if strings.IndexByte(text, 0) >= 0 {
		return "", domain.ExtractionError("extracted text contains NUL bytes", nil)
	}

	n := utf8.RuneCountInString(strings.TrimSpace(text))
	if n == 0 {
		return "", domain.EmptyContentError()
	}
	if n < v.minChars {
		return "", domain.ContentTooShortError(n, v.minChars)
	}
	return text, nil
}
