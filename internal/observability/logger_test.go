package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "debug", Format: "json", Output: &buf, ServiceName: "docqa-test"})

	ctx := ContextWithRunID(ContextWithRequestID(context.Background(), "req-1"), "run-1")
	log.WithContext(ctx).WithOperation("ingest").Info().
		Str("format", "pdf").
		Int("bytes", 42).
		Err(errors.New("boom")).
		Msg("extraction finished")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "docqa-test", entry["service"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "run-1", entry["run_id"])
	assert.Equal(t, "ingest", entry["operation"])
	assert.Equal(t, "pdf", entry["format"])
	assert.Equal(t, float64(42), entry["bytes"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "extraction finished", entry["message"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "warn", Format: "json", Output: &buf})

	log.Debug().Msg("hidden")
	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_WithContextWithoutIDs(t *testing.T) {
	log := Nop()
	assert.Same(t, log, log.WithContext(context.Background()))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b c", Preview("a \n b\t c", 10))
	assert.Equal(t, "héll...", Preview("héllo world", 4))
}

func TestMetrics_PrivateRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ExtractionsTotal.WithLabelValues("pdf", "ok").Inc()
	m.ExtractionsTotal.WithLabelValues("pdf", "ok").Inc()
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues("pdf", "ok")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "docqa_extractions_total"))

	// A second set on its own registry must not panic on duplicate registration.
	assert.NotPanics(t, func() { NewMetrics(nil) })
}
