package providers

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/oakworth/steward/internal/agent"
)

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
}

// OpenAIProvider talks to the OpenAI chat completion API, or any
// compatible endpoint when BaseURL is set.
type OpenAIProvider struct {
	client       *openai.Client
	defaultModel string
}

var _ agent.Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a new OpenAI provider. An empty API key is
// allowed; Complete reports the missing key when called.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	p := &OpenAIProvider{defaultModel: strings.TrimSpace(cfg.DefaultModel)}
	if cfg.APIKey == "" {
		return p
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	p.client = openai.NewClientWithConfig(clientCfg)
	return p
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Complete sends a non-streaming chat completion request.
func (p *OpenAIProvider) Complete(ctx context.Context, req *agent.CompletionRequest) (*agent.Completion, error) {
	if req == nil {
		return nil, errors.New("request is nil")
	}
	if p.client == nil {
		return nil, NewProviderError("openai", req.Model, errors.New("api key not configured"))
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = p.defaultModel
	}
	if model == "" {
		return nil, NewProviderError("openai", req.Model, errors.New("model is required"))
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if system := strings.TrimSpace(req.System); system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, msg := range req.Messages {
		role := msg.Role
		if role == "" {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, NewProviderError("openai", model, err)
	}
	if len(resp.Choices) == 0 {
		return nil, NewProviderError("openai", model, errors.New("response has no choices"))
	}

	return &agent.Completion{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
	}, nil
}
