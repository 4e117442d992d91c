package llm

import (
	"context"
	"errors"
)

// Chat roles understood by every provider.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

var (
	// ErrNotConfigured is returned when no provider credential is available.
	ErrNotConfigured = errors.New("llm provider not configured")
	// ErrQuotaExceeded is returned when the provider rejects the call for billing or quota reasons.
	ErrQuotaExceeded = errors.New("llm quota exceeded")
	// ErrInvalidAPIKey is returned when the provider rejects the credential.
	ErrInvalidAPIKey = errors.New("llm invalid api key")
	// ErrTimeout is returned when the provider does not answer in time.
	ErrTimeout = errors.New("llm request timeout")
	// ErrEmptyResponse is returned when the provider answers without any content.
	ErrEmptyResponse = errors.New("llm empty response")
)

// Message is one turn of a chat prompt.
type Message struct {
	Role    string
	Content string
}

// CompletionRequest is a single blocking chat completion call.
type CompletionRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// Completion is the provider's answer.
type Completion struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Client abstracts LLM providers.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
	// Model names the model calls are sent to.
	Model() string
}
