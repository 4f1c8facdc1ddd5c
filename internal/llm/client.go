// Package llm implements the language model capability over OpenRouter,
// OpenAI-compatible endpoints (OpenAI, Groq) and Vertex AI.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spherical/docqa/internal/domain"
	"github.com/spherical/docqa/internal/observability"
)

const (
	openRouterURL          = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenRouterModel = "google/gemini-2.5-flash"
)

// maxResponseBytes bounds the body read from a model endpoint.
const maxResponseBytes = 8 << 20

// Client handles communication with the OpenRouter chat completions API
type Client struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
	retry      RetryConfig
	logger     *observability.Logger
}

// Message represents a chat message
type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart represents a part of message content
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Request represents the API request structure
type Request struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// Response represents the API response structure
type Response struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Choice represents a single completion choice
type Choice struct {
	Message      Delta  `json:"message"`
	FinishReason string `json:"finish_reason"`
}

// Delta represents the assistant message of a choice
type Delta struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithURL overrides the chat completions endpoint.
func WithURL(url string) ClientOption {
	return func(c *Client) {
		if url != "" {
			c.url = url
		}
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(rc RetryConfig) ClientOption {
	return func(c *Client) { c.retry = rc }
}

// WithLogger sets the client logger.
func WithLogger(l *observability.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a new OpenRouter client
func NewClient(apiKey, model string, opts ...ClientOption) *Client {
	if model == "" {
		model = defaultOpenRouterModel
	}

	c := &Client{
		apiKey:     apiKey,
		model:      model,
		url:        openRouterURL,
		httpClient: &http.Client{},
		retry:      DefaultRetryConfig(),
		logger:     observability.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements domain.Completer.
func (c *Client) Name() string {
	return "openrouter/" + c.model
}

// Complete implements domain.Completer.
func (c *Client) Complete(ctx context.Context, prompt domain.Prompt) (string, error) {
	body, err := json.Marshal(c.buildRequest(prompt))
	if err != nil {
		return "", domain.ModelUnavailableError("Failed to marshal request", err)
	}

	return retryWithBackoff(ctx, c.retry, c.logger, func(ctx context.Context) (string, error) {
		return c.send(ctx, body)
	})
}

// buildRequest constructs the non-streaming API request
func (c *Client) buildRequest(prompt domain.Prompt) *Request {
	return &Request{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: []ContentPart{{Type: "text", Text: prompt.System}}},
			{Role: "user", Content: []ContentPart{{Type: "text", Text: prompt.User}}},
		},
		Stream: false,
	}
}

func (c *Client) send(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("HTTP-Referer", "https://github.com/spherical/docqa")
	req.Header.Set("X-Title", "Document QA")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), 512)}
	}

	return parseResponse(data)
}

// parseResponse extracts the first choice's content.
func parseResponse(data []byte) (string, error) {
	var r Response
	if err := json.Unmarshal(data, &r); err != nil {
		return "", domain.ModelResponseInvalidError("response is not valid JSON", err)
	}
	if r.Error != nil {
		return "", domain.ModelResponseInvalidError(fmt.Sprintf("provider error: %s", r.Error.Message), nil)
	}
	if len(r.Choices) == 0 {
		return "", domain.ModelResponseInvalidError("response has no choices", nil)
	}
	return r.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
