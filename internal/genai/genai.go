// Package genai provides the chat-completion client used for open-ended
// support chat after the qualification funnel completes, backed by OpenAI.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-4.1-mini"

// Error variables for better error handling and testability
var (
	ErrNoChoicesReturned = errors.New("no choices returned")
	ErrEmptyContent      = errors.New("completion content is empty")
)

// chatService defines the minimal interface for chat completions,
// satisfied by the OpenAI client's Completions service and by test stubs.
type chatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Opts holds configuration options for the completion client.
type Opts struct {
	APIKey string
	Model  string
}

// Option defines a configuration option for the completion client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key, overriding the environment.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel sets the chat model used for completions.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// Client wraps the OpenAI chat-completion service.
type Client struct {
	chat  chatService
	model string
}

// NewClient initializes a new completion client. The API key falls back to
// the OPENAI_API_KEY environment variable when not provided via options.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	slog.Debug("GenAI client configured", "model", cfg.Model, "api_key_set", true)

	cli := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	return &Client{chat: &cli.Chat.Completions, model: cfg.Model}, nil
}

// Complete generates an assistant answer for the given system prompt and user
// text. Empty responses are reported as errors so callers can substitute
// their fallback text uniformly.
func (c *Client) Complete(ctx context.Context, systemPrompt, userText string, temperature float64) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userText),
		},
		Temperature: openai.Float(temperature),
	}

	resp, err := c.chat.New(ctx, params)
	if err != nil {
		slog.Error("GenAI completion request failed", "error", err, "model", c.model)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Error("GenAI completion returned no choices", "model", c.model)
		return "", ErrNoChoicesReturned
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		slog.Error("GenAI completion returned empty content", "model", c.model)
		return "", ErrEmptyContent
	}

	slog.Debug("GenAI completion succeeded", "model", c.model, "content_length", len(content))
	return content, nil
}
