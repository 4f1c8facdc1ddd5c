package llm

import (
	"context"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/spherical/docqa/internal/domain"
	"github.com/spherical/docqa/internal/observability"
)

// GroqBaseURL is Groq's OpenAI-compatible endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// OpenAIClient talks to any OpenAI-compatible chat completions API.
type OpenAIClient struct {
	client   openai.Client
	model    string
	provider string
	retry    RetryConfig
	logger   *observability.Logger
}

// OpenAIConfig configures an OpenAIClient.
type OpenAIConfig struct {
	Provider   string // label used in Name, e.g. "groq"
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Retry      RetryConfig
	Logger     *observability.Logger
}

// NewOpenAIClient creates a client. The SDK's own retries are disabled so
// the shared retry policy applies.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	provider := cfg.Provider
	if provider == "" {
		provider = "openai"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = observability.Nop()
	}

	return &OpenAIClient{
		client:   openai.NewClient(opts...),
		model:    cfg.Model,
		provider: provider,
		retry:    cfg.Retry,
		logger:   logger,
	}
}

// Name implements domain.Completer.
func (c *OpenAIClient) Name() string {
	return c.provider + "/" + c.model
}

// Complete implements domain.Completer.
func (c *OpenAIClient) Complete(ctx context.Context, prompt domain.Prompt) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
	}

	return retryWithBackoff(ctx, c.retry, c.logger, func(ctx context.Context) (string, error) {
		resp, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", domain.ModelResponseInvalidError("response has no choices", nil)
		}
		return resp.Choices[0].Message.Content, nil
	})
}
