package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/docqa/internal/config"
	"github.com/spherical/docqa/internal/domain"
	"github.com/spherical/docqa/internal/health"
	"github.com/spherical/docqa/internal/workflow"
)

type fakeConverter struct{ err error }

func (f fakeConverter) Available() error { return f.err }

func (f fakeConverter) Convert(ctx context.Context, data []byte, src, dst string) ([]byte, error) {
	return nil, f.err
}

func TestBuild_RequiresCredentials(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.APIKey = ""

	_, err := Build(context.Background(), cfg, nil, nil, Options{})
	assert.Error(t, err)
}

func TestBuild_SkipModel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.APIKey = ""

	a, err := Build(context.Background(), cfg, nil, nil, Options{SkipModel: true})
	require.NoError(t, err)
	assert.Nil(t, a.Completer)

	doc, err := a.Graph.Ingest(context.Background(), domain.RawUpload{
		Data: []byte("Revenue grew 12% in Q3 compared to Q2."), Format: domain.FormatPlainText,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.FormatPlainText, doc.SourceFormat)

	res := a.Graph.Run(context.Background(), workflow.Input{Question: "Why?", Text: doc.Text})
	require.False(t, res.OK())
	assert.Equal(t, domain.KindModelUnavailable, res.Err.Kind)
}

func TestBuild_WithProviderKey(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.APIKey = "gsk-test"

	a, err := Build(context.Background(), cfg, nil, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "groq/llama-3.1-8b-instant", a.Completer.Name())
	assert.Equal(t, cfg.Ingestion.MaxUploadBytes, a.Registry.MaxUploadBytes())
}

func TestChecks(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, health.StatusUp, ConverterCheck(fakeConverter{})(ctx).Status)
	degraded := ConverterCheck(fakeConverter{err: errors.New("soffice not found")})(ctx)
	assert.Equal(t, health.StatusDegraded, degraded.Status)
	assert.Equal(t, "soffice not found", degraded.Message)

	assert.Equal(t, health.StatusDown, ModelCheck(nil)(ctx).Status)
}

type closingCompleter struct {
	closed int
	err    error
}

func (c *closingCompleter) Name() string { return "closing/test" }

func (c *closingCompleter) Complete(ctx context.Context, p domain.Prompt) (string, error) {
	return "ok", nil
}

func (c *closingCompleter) Close() error {
	c.closed++
	return c.err
}

func TestApp_Close(t *testing.T) {
	cfg := config.DefaultConfig()

	c := &closingCompleter{}
	a, err := Build(context.Background(), cfg, nil, nil, Options{Completer: c})
	require.NoError(t, err)
	require.NoError(t, a.Close())
	assert.Equal(t, 1, c.closed)

	c.err = errors.New("grpc conn already closed")
	assert.ErrorContains(t, a.Close(), "grpc conn already closed")

	skipped, err := Build(context.Background(), cfg, nil, nil, Options{SkipModel: true})
	require.NoError(t, err)
	assert.NoError(t, skipped.Close())
}
