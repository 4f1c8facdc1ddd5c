package extract

import (
	"context"

	"github.com/spherical/docqa/internal/domain"
)

// LegacyStrategy converts a legacy binary office file to its modern
// equivalent and extracts the result with the modern strategy.
type LegacyStrategy struct {
	conv      domain.Converter
	sourceExt string
	targetExt string
	modern    domain.Strategy
}

// NewLegacyStrategy creates a strategy converting sourceExt to targetExt.
func NewLegacyStrategy(conv domain.Converter, sourceExt, targetExt string, modern domain.Strategy) *LegacyStrategy {
	return &LegacyStrategy{conv: conv, sourceExt: sourceExt, targetExt: targetExt, modern: modern}
}

// Extract implements domain.Strategy.
func (s *LegacyStrategy) Extract(ctx context.Context, data []byte) (string, error) {
	if s.conv == nil {
		return "", domain.ConverterUnavailableError("no converter configured for ."+s.sourceExt+" files", nil)
	}
	if err := s.conv.Available(); err != nil {
		if _, ok := domain.AsDomainError(err); ok {
			return "", err
		}
		return "", domain.ConverterUnavailableError("converter unavailable", err)
	}

	converted, err := s.conv.Convert(ctx, data, s.sourceExt, s.targetExt)
	if err != nil {
		if _, ok := domain.AsDomainError(err); ok {
			return "", err
		}
		return "", domain.ExtractionError("cannot convert ."+s.sourceExt+" file", err)
	}
	return s.modern.Extract(ctx, converted)
}
