package agent

import (
	"context"
	"errors"
)

// ErrNoProvider is returned when no model backend is configured for the
// selected processing tier.
var ErrNoProvider = errors.New("no model provider configured")

// Provider is a synchronous request/response model backend.
//
// Implementations must be safe for concurrent use; distinct sessions
// may call Complete simultaneously.
type Provider interface {
	// Complete sends a prompt with optional history and returns the
	// generated text. A non-2xx backend response or transport failure is
	// a hard failure of that call only.
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)

	// Name returns the provider name for logging and metrics.
	Name() string
}

// CompletionRequest carries one model backend call.
type CompletionRequest struct {
	// Model overrides the provider default when set.
	Model string

	// System sets assistant behavior, handled apart from messages.
	System string

	// Messages is the conversation in chronological order; the last
	// entry is the active prompt.
	Messages []CompletionMessage

	// MaxTokens caps the response length (0 = provider default).
	MaxTokens int
}

// CompletionMessage is one entry of conversation history.
type CompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completion is the model backend's answer.
type Completion struct {
	Text  string
	Model string
}
