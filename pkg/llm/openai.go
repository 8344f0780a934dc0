package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ikkim/replydesk-backend/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider talks to any OpenAI-compatible chat endpoint and answers through function tools.
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(cfg Config) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	}
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}
	if cfg.MaxOutputTokens == 0 {
		cfg.MaxOutputTokens = 2048
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}
}

func (p *OpenAIProvider) Name() string     { return "openai" }
func (p *OpenAIProvider) Structured() bool { return true }
func (p *OpenAIProvider) Configured() bool { return p.config.APIKey != "" }

// Complete issues one chat completion offering one tool per requested capability.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if !p.Configured() {
		return nil, ErrNotConfigured
	}

	tools := make([]openai.Tool, 0, len(req.Capabilities))
	for _, c := range req.Capabilities {
		name := ToolFor(c)
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        name,
				Description: toolDescription(name),
				Parameters:  toolSchema(name),
			},
		})
	}

	chatReq := openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   p.config.MaxOutputTokens,
		Temperature: float32(p.config.Temperature),
		Tools:       tools,
	}
	switch len(tools) {
	case 0:
	case 1:
		chatReq.ToolChoice = openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: tools[0].Function.Name},
		}
	default:
		chatReq.ToolChoice = "required"
	}

	logger.Debug("Calling OpenAI-compatible endpoint", map[string]interface{}{
		"model":         p.config.Model,
		"tools":         len(tools),
		"prompt_length": len(req.Prompt),
	})

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, mapOpenAIError(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		calls := make([]ToolCall, 0, len(msg.ToolCalls))
		for _, tc := range msg.ToolCalls {
			calls = append(calls, ToolCall{
				Name:      tc.Function.Name,
				Arguments: json.RawMessage(tc.Function.Arguments),
			})
		}
		return ToolCallCompletion(calls...), nil
	}

	// Some compatible servers ignore tools and answer in plain text.
	if msg.Content != "" {
		return TextCompletion(msg.Content), nil
	}
	return nil, ErrEmptyResponse
}

func mapOpenAIError(ctx context.Context, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(reqErr.HTTPStatusCode, fmt.Sprint(reqErr.Err))
	}
	return transportError(ctx, err)
}
