package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the document QA core can return.
// The string values are part of the wire contract.
type ErrorKind string

const (
	KindUnsupportedFormat    ErrorKind = "unsupported_format"
	KindPayloadTooLarge      ErrorKind = "payload_too_large"
	KindConverterUnavailable ErrorKind = "converter_unavailable"
	KindExtractionFailed     ErrorKind = "extraction_failed"
	KindEmptyContent         ErrorKind = "empty_content"
	KindContentTooShort      ErrorKind = "content_too_short"
	KindInvalidQuestion      ErrorKind = "invalid_question"
	KindContextTooLarge      ErrorKind = "context_too_large"
	KindModelUnavailable     ErrorKind = "model_unavailable"
	KindModelResponseInvalid ErrorKind = "model_response_invalid"
)

var allKinds = []ErrorKind{
	KindUnsupportedFormat,
	KindPayloadTooLarge,
	KindConverterUnavailable,
	KindExtractionFailed,
	KindEmptyContent,
	KindContentTooShort,
	KindInvalidQuestion,
	KindContextTooLarge,
	KindModelUnavailable,
	KindModelResponseInvalid,
}

// AllKinds returns the complete, ordered error taxonomy.
func AllKinds() []ErrorKind {
	out := make([]ErrorKind, len(allKinds))
	copy(out, allKinds)
	return out
}

// Valid reports whether k is part of the taxonomy.
func (k ErrorKind) Valid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

// DomainError represents a domain-specific error with context
type DomainError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another *DomainError of the same kind, so callers can write
// errors.Is(err, &DomainError{Kind: KindEmptyContent}).
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// NewError creates a new domain error
func NewError(kind ErrorKind, message string, err error) *DomainError {
	return &DomainError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// AsDomainError extracts the first *DomainError in err's chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// KindOf returns the kind of err, or "" when err carries none.
func KindOf(err error) ErrorKind {
	if de, ok := AsDomainError(err); ok {
		return de.Kind
	}
	return ""
}

// Common error constructors
func UnsupportedFormatError(message string) *DomainError {
	return NewError(KindUnsupportedFormat, message, nil)
}

func PayloadTooLargeError(size, limit int64) *DomainError {
	return NewError(KindPayloadTooLarge,
		fmt.Sprintf("upload is %d bytes, limit is %d bytes", size, limit), nil)
}

func ConverterUnavailableError(message string, err error) *DomainError {
	return NewError(KindConverterUnavailable, message, err)
}

func ExtractionError(message string, err error) *DomainError {
	return NewError(KindExtractionFailed, message, err)
}

func EmptyContentError() *DomainError {
	return NewError(KindEmptyContent, "document contains no extractable text", nil)
}

func ContentTooShortError(length, min int) *DomainError {
	return NewError(KindContentTooShort,
		fmt.Sprintf("document text has %d characters, at least %d are required", length, min), nil)
}

func InvalidQuestionError(message string) *DomainError {
	return NewError(KindInvalidQuestion, message, nil)
}

func ContextTooLargeError(size, budget int) *DomainError {
	return NewError(KindContextTooLarge,
		fmt.Sprintf("prompt is %d characters, model budget is %d", size, budget), nil)
}

func ModelUnavailableError(message string, err error) *DomainError {
	return NewError(KindModelUnavailable, message, err)
}

func ModelResponseInvalidError(message string, err error) *DomainError {
	return NewError(KindModelResponseInvalid, message, err)
}
