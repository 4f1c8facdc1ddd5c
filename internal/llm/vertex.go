package llm

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/spherical/docqa/internal/domain"
	"github.com/spherical/docqa/internal/observability"
)

// generator is the part of *genai.GenerativeModel the Vertex client uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// VertexClient answers with a Gemini model on Vertex AI.
type VertexClient struct {
	base   *genai.Client
	model  string
	newGen func(system string) generator
	retry  RetryConfig
	logger *observability.Logger
}

// NewVertexClient connects to Vertex AI in project/region.
func NewVertexClient(ctx context.Context, project, region, model string, retry RetryConfig, logger *observability.Logger) (*VertexClient, error) {
	base, err := genai.NewClient(ctx, project, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	if logger == nil {
		logger = observability.Nop()
	}

	c := &VertexClient{base: base, model: model, retry: retry, logger: logger}
	c.newGen = func(system string) generator {
		// GenerativeModel is cheap; one per call keeps the system
		// instruction request-scoped.
		gm := base.GenerativeModel(model)
		gm.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
		gm.GenerationConfig = genai.GenerationConfig{
			Temperature: genai.Ptr[float32](0.1),
		}
		return gm
	}
	return c, nil
}

// Name implements domain.Completer.
func (c *VertexClient) Name() string {
	return "vertex/" + c.model
}

// Complete implements domain.Completer.
func (c *VertexClient) Complete(ctx context.Context, prompt domain.Prompt) (string, error) {
	gen := c.newGen(prompt.System)
	return retryWithBackoff(ctx, c.retry, c.logger, func(ctx context.Context) (string, error) {
		resp, err := gen.GenerateContent(ctx, genai.Text(prompt.User))
		if err != nil {
			return "", err
		}
		return responseText(resp)
	})
}

// Close releases the underlying connection.
func (c *VertexClient) Close() error {
	if c.base == nil {
		return nil
	}
	return c.base.Close()
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", domain.ModelResponseInvalidError("response has no candidates", nil)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String(), nil
}
