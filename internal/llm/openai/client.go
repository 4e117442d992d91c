package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"docchat-backend/internal/llm"
	"docchat-backend/internal/shared/telemetry"
)

const (
	defaultModel   = goopenai.GPT3Dot5Turbo
	defaultTimeout = 60 * time.Second

	// PlaceholderAPIKey is the sample value shipped in example env files.
	PlaceholderAPIKey = "your-api-key-here"
)

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	api   *goopenai.Client
	model string
}

// Options configures the OpenAI client.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// HasCredential reports whether key looks like a usable API key.
func HasCredential(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && key != PlaceholderAPIKey
}

// NewClient constructs a new OpenAI client.
func NewClient(opts Options) (*Client, error) {
	if !HasCredential(opts.APIKey) {
		return nil, fmt.Errorf("OPENAI_API_KEY is required: %w", llm.ErrNotConfigured)
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	cfg := goopenai.DefaultConfig(strings.TrimSpace(opts.APIKey))
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.BaseURL = strings.TrimRight(base, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		api:   goopenai.NewClientWithConfig(cfg),
		model: model,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Complete issues one chat completion call.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (llm.Completion, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return llm.Completion{}, classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return llm.Completion{}, fmt.Errorf("openai response missing choices: %w", llm.ErrEmptyResponse)
	}

	out := llm.Completion{
		Text:             resp.Choices[0].Message.Content,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	telemetry.Named("llm.openai").Info("llm.response",
		zap.String("model", out.Model),
		zap.Int("prompt_tokens", out.PromptTokens),
		zap.Int("completion_tokens", out.CompletionTokens),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
	)
	return out, nil
}

func classifyError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		code := codeString(apiErr.Code)
		switch {
		case code == "insufficient_quota" || apiErr.Type == "insufficient_quota":
			return fmt.Errorf("openai error: %s: %w", apiErr.Message, llm.ErrQuotaExceeded)
		case code == "invalid_api_key" || apiErr.HTTPStatusCode == http.StatusUnauthorized:
			return fmt.Errorf("openai error: %s: %w", apiErr.Message, llm.ErrInvalidAPIKey)
		}
		return fmt.Errorf("openai error: %s (%s)", apiErr.Message, apiErr.Type)
	}

	if errors.Is(err, context.DeadlineExceeded) || isNetTimeout(err) {
		return fmt.Errorf("openai request timeout: %v: %w", err, llm.ErrTimeout)
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusUnauthorized {
		return fmt.Errorf("openai request: %v: %w", err, llm.ErrInvalidAPIKey)
	}
	return fmt.Errorf("openai request: %w", err)
}

func isNetTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "Client.Timeout")
}

func codeString(code any) string {
	switch v := code.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

var _ llm.Client = (*Client)(nil)
