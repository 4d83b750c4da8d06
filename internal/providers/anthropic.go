package providers

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/oakworth/steward/internal/agent"
)

const defaultAnthropicMaxTokens = 4096

// AnthropicConfig configures the Anthropic provider.
type AnthropicConfig struct {
	APIKey       string
	DefaultModel string
}

// AnthropicProvider talks to the Anthropic Messages API. It backs the
// escalation bridge worker; local tiers never use it.
type AnthropicProvider struct {
	client       anthropic.Client
	configured   bool
	defaultModel string
}

var _ agent.Provider = (*AnthropicProvider)(nil)

// NewAnthropicProvider creates a new Anthropic provider. An empty API
// key is allowed; Complete reports the missing key when called.
func NewAnthropicProvider(cfg AnthropicConfig) *AnthropicProvider {
	p := &AnthropicProvider{defaultModel: strings.TrimSpace(cfg.DefaultModel)}
	if cfg.APIKey == "" {
		return p
	}
	p.client = anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	p.configured = true
	return p
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Complete sends a non-streaming messages request.
func (p *AnthropicProvider) Complete(ctx context.Context, req *agent.CompletionRequest) (*agent.Completion, error) {
	if req == nil {
		return nil, errors.New("request is nil")
	}
	if !p.configured {
		return nil, NewProviderError("anthropic", req.Model, errors.New("api key not configured"))
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = p.defaultModel
	}
	if model == "" {
		return nil, NewProviderError("anthropic", req.Model, errors.New("model is required"))
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, msg := range req.Messages {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == "assistant" {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  messages,
	}
	if system := strings.TrimSpace(req.System); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, NewProviderError("anthropic", model, err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, NewProviderError("anthropic", model, errors.New("response has no text content"))
	}

	return &agent.Completion{
		Text:  text.String(),
		Model: string(resp.Model),
	}, nil
}
