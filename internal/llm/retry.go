package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/spherical/docqa/internal/domain"
	"github.com/spherical/docqa/internal/observability"
)

const (
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
)

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// OnRetry, when set, is called before each wait.
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     maxRetries,
		InitialBackoff: initialBackoff,
		MaxBackoff:     maxBackoff,
	}
}

// StatusError is a non-2xx response from an HTTP model endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
}

// shouldRetry determines if an HTTP status is retryable
func shouldRetry(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests: // 429
		return true
	case http.StatusInternalServerError: // 500
		return true
	case http.StatusBadGateway: // 502
		return true
	case http.StatusServiceUnavailable: // 503
		return true
	case http.StatusGatewayTimeout: // 504
		return true
	default:
		return false
	}
}

// IsTransient reports whether err is worth another attempt: retryable HTTP
// statuses, network failures, and overloaded or unavailable gRPC backends.
// Typed domain failures are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := domain.AsDomainError(err); ok {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return shouldRetry(se.StatusCode)
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return shouldRetry(apiErr.StatusCode)
	}

	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded:
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}

// calculateBackoff calculates exponential backoff duration
func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	// Exponential backoff: initialBackoff * 2^attempt
	backoff := float64(config.InitialBackoff) * math.Pow(2, float64(attempt))

	// Cap at maxBackoff
	if config.MaxBackoff > 0 && backoff > float64(config.MaxBackoff) {
		backoff = float64(config.MaxBackoff)
	}

	return time.Duration(backoff)
}

// retryWithBackoff runs call until it succeeds, fails permanently, or the
// retries are exhausted. Every failure leaves as a *domain.DomainError:
// typed failures from call pass through, anything else is ModelUnavailable.
func retryWithBackoff(ctx context.Context, config RetryConfig, logger *observability.Logger, call func(context.Context) (string, error)) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		// Check context cancellation
		if err := ctx.Err(); err != nil {
			return "", domain.ModelUnavailableError("request cancelled", err)
		}

		out, err := call(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", domain.ModelUnavailableError("request cancelled", ctxErr)
		}
		if _, ok := domain.AsDomainError(err); ok {
			return "", err
		}
		if !IsTransient(err) {
			return "", domain.ModelUnavailableError("model request failed", err)
		}

		// Don't wait after last attempt
		if attempt == config.MaxRetries {
			break
		}

		backoff := calculateBackoff(attempt, config)
		logger.WithContext(ctx).Warn().
			Int("attempt", attempt+1).
			Int("max_retries", config.MaxRetries).
			Dur("backoff", backoff).
			Err(err).
			Msg("Model request failed, retrying")
		if config.OnRetry != nil {
			config.OnRetry(attempt+1, err)
		}

		// Wait with context cancellation support
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", domain.ModelUnavailableError("request cancelled", ctx.Err())
		case <-timer.C:
		}
	}

	return "", domain.ModelUnavailableError(fmt.Sprintf("request failed after %d retries", config.MaxRetries), lastErr)
}
